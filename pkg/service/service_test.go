package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nanohard/petal-lottery-bot/pkg/db"
)

var (
	created = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	endsAt  = created.Add(time.Hour)
	biomes  = []string{"Fire Ant Hell", "Normal Ant Hell", "Desert", "Ocean"}
)

func openStore(t *testing.T) *db.Storm {
	t.Helper()
	s, err := db.OpenStorm(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newEvent(t *testing.T, svc *LotteryService, id string, mods ...func(*NewEvent)) {
	t.Helper()
	in := NewEvent{ID: id, Title: "Ant hell run", EndsAt: endsAt, CreatedAt: created}
	for _, m := range mods {
		m(&in)
	}
	_, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)
}
