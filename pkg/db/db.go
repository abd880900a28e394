package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/nanohard/petal-lottery-bot/pkg/config"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

var ErrNotFound = errors.New("record not found")

// Store persists lottery events and score records.
type Store interface {
	FindEvent(ctx context.Context, id string) (models.Event, error)
	SaveEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	FindScore(ctx context.Context, userID string) (models.Score, error)
	SaveScore(ctx context.Context, score models.Score) error
	Close() error
}

// Open returns the backend named by conf.Driver.
func Open(conf config.Storage) (Store, error) {
	switch conf.Driver {
	case config.DriverStorm:
		return OpenStorm(conf.Path)
	case config.DriverPostgres:
		return OpenPostgres(conf.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Driver)
	}
}
