package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/gym_site/internal/db"
	"github.com/Skotchmaster/gym_site/internal/models"
	"github.com/Skotchmaster/gym_site/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repo.NewGormRepo(gdb)
}

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := event.(map[string]any)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: ev})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fakeNotifier struct {
	sent []models.ContactMessage
	err  error
}

func (n *fakeNotifier) SendContactNotification(_ context.Context, msg models.ContactMessage) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type fakeIndexer struct {
	calls map[string][]models.ContentRecord
	err   error
}

func (f *fakeIndexer) IndexType(_ context.Context, typ string, records []models.ContentRecord) error {
	if f.calls == nil {
		f.calls = map[string][]models.ContentRecord{}
	}
	f.calls[typ] = records
	return f.err
}

var errBoom = errors.New("boom")
