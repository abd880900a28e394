package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asdine/storm"
	bolt "go.etcd.io/bbolt"

	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

// Storm keeps everything in a single bbolt file.
type Storm struct {
	db *storm.DB
}

func OpenStorm(path string) (*Storm, error) {
	db, err := storm.Open(path, storm.BoltOptions(0o600, &bolt.Options{Timeout: 5 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("storm.Open -> %w", err)
	}

	for _, model := range []interface{}{&models.Event{}, &models.Score{}} {
		if err := db.Init(model); err != nil {
			db.Close()
			return nil, fmt.Errorf("db.Init -> %w", err)
		}
	}

	return &Storm{db: db}, nil
}

func (s *Storm) FindEvent(_ context.Context, id string) (models.Event, error) {
	var event models.Event
	if err := s.db.One("ID", id, &event); err != nil {
		return models.Event{}, notFound(err)
	}
	return event, nil
}

func (s *Storm) SaveEvent(_ context.Context, event models.Event) error {
	if err := s.db.Save(&event); err != nil {
		return fmt.Errorf("s.db.Save -> %w", err)
	}
	return nil
}

func (s *Storm) DeleteEvent(_ context.Context, id string) error {
	if err := s.db.DeleteStruct(&models.Event{ID: id}); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Storm) FindScore(_ context.Context, userID string) (models.Score, error) {
	var score models.Score
	if err := s.db.One("ID", userID, &score); err != nil {
		return models.Score{}, notFound(err)
	}
	return score, nil
}

func (s *Storm) SaveScore(_ context.Context, score models.Score) error {
	if err := s.db.Save(&score); err != nil {
		return fmt.Errorf("s.db.Save -> %w", err)
	}
	return nil
}

func (s *Storm) Close() error {
	return s.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, storm.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
