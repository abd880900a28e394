package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

type eventRow struct {
	ID            string    `gorm:"primaryKey"`
	Title         string    `gorm:"not null"`
	EndsAt        time.Time `gorm:"not null"`
	RequiredBiome string
	RequiredScore float64
	Lurer         datatypes.JSON `gorm:"type:jsonb"`
	Prioritized   datatypes.JSON `gorm:"type:jsonb"`
	Participants  datatypes.JSON `gorm:"type:jsonb"`
	Winners       datatypes.JSON `gorm:"type:jsonb"` // null until drawn
	ChannelID     string
	MessageID     string
	CreatedAt     time.Time `gorm:"not null"`
}

func (eventRow) TableName() string {
	return "lottery_events"
}

type scoreRow struct {
	ID        string         `gorm:"primaryKey"`
	Scores    datatypes.JSON `gorm:"type:jsonb"`
	Inventory datatypes.JSON `gorm:"type:jsonb"`
	Egg       int            `gorm:"not null;default:0"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (scoreRow) TableName() string {
	return "scores"
}

// Postgres stores events and scores with gorm, list fields as jsonb.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(url string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	if err := db.AutoMigrate(&eventRow{}, &scoreRow{}); err != nil {
		return nil, fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) FindEvent(ctx context.Context, id string) (models.Event, error) {
	var row eventRow
	if err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return row.event()
}

func (p *Postgres) SaveEvent(ctx context.Context, event models.Event) error {
	row, err := newEventRow(event)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("p.db.Save -> %w", err)
	}
	return nil
}

func (p *Postgres) DeleteEvent(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).Delete(&eventRow{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("p.db.Delete -> %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) FindScore(ctx context.Context, userID string) (models.Score, error) {
	var row scoreRow
	if err := p.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Score{}, ErrNotFound
		}
		return models.Score{}, err
	}
	return row.score()
}

func (p *Postgres) SaveScore(ctx context.Context, score models.Score) error {
	row, err := newScoreRow(score)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("p.db.Save -> %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("p.db.DB -> %w", err)
	}
	return sqlDB.Close()
}

func newEventRow(e models.Event) (eventRow, error) {
	row := eventRow{
		ID:            e.ID,
		Title:         e.Title,
		EndsAt:        e.EndsAt,
		RequiredBiome: e.RequiredBiome,
		RequiredScore: e.RequiredScore,
		ChannelID:     e.ChannelID,
		MessageID:     e.MessageID,
		CreatedAt:     e.CreatedAt,
	}
	lists := []struct {
		dst *datatypes.JSON
		src []string
	}{
		{&row.Lurer, e.Lurer},
		{&row.Prioritized, e.Prioritized},
		{&row.Participants, e.Participants},
		{&row.Winners, e.Winners},
	}
	for _, l := range lists {
		raw, err := json.Marshal(l.src)
		if err != nil {
			return eventRow{}, fmt.Errorf("json.Marshal -> %w", err)
		}
		*l.dst = raw
	}
	return row, nil
}

func (r eventRow) event() (models.Event, error) {
	e := models.Event{
		ID:            r.ID,
		Title:         r.Title,
		EndsAt:        r.EndsAt.UTC(),
		RequiredBiome: r.RequiredBiome,
		RequiredScore: r.RequiredScore,
		ChannelID:     r.ChannelID,
		MessageID:     r.MessageID,
		CreatedAt:     r.CreatedAt.UTC(),
	}
	lists := []struct {
		dst *[]string
		src datatypes.JSON
	}{
		{&e.Lurer, r.Lurer},
		{&e.Prioritized, r.Prioritized},
		{&e.Participants, r.Participants},
		{&e.Winners, r.Winners},
	}
	for _, l := range lists {
		if len(l.src) == 0 {
			continue
		}
		if err := json.Unmarshal(l.src, l.dst); err != nil {
			return models.Event{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
	}
	return e, nil
}

func newScoreRow(s models.Score) (scoreRow, error) {
	scores, err := json.Marshal(s.Scores)
	if err != nil {
		return scoreRow{}, fmt.Errorf("json.Marshal -> %w", err)
	}
	inventory, err := json.Marshal(s.Inventory)
	if err != nil {
		return scoreRow{}, fmt.Errorf("json.Marshal -> %w", err)
	}
	return scoreRow{
		ID:        s.ID,
		Scores:    scores,
		Inventory: inventory,
		Egg:       s.Egg,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func (r scoreRow) score() (models.Score, error) {
	s := models.Score{
		ID:        r.ID,
		Egg:       r.Egg,
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if len(r.Scores) > 0 {
		if err := json.Unmarshal(r.Scores, &s.Scores); err != nil {
			return models.Score{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
	}
	if len(r.Inventory) > 0 {
		var inventory []equipment.Entry
		if err := json.Unmarshal(r.Inventory, &inventory); err != nil {
			return models.Score{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
		s.Inventory = inventory
	}
	return s, nil
}
