package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"edufunkids/internal/cache"
	"edufunkids/internal/database"
	"edufunkids/internal/game"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/progress"
	"edufunkids/internal/repository"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory ProfileStore whose writes can be made to fail
type memStore struct {
	mu         sync.Mutex
	docs       map[string]map[string]any
	failWrites bool
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]any)}
}

func (m *memStore) Get(ctx context.Context, userID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return progress.ToDocument(doc)
}

func (m *memStore) Set(ctx context.Context, userID string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errDiskFull
	}
	clone, err := progress.ToDocument(doc)
	if err != nil {
		return err
	}
	m.docs[userID] = clone
	return nil
}

func (m *memStore) Update(ctx context.Context, userID string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errDiskFull
	}
	doc, ok := m.docs[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	return repository.ApplyFields(doc, fields)
}

func (m *memStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, userID)
	return nil
}

func (m *memStore) setFailing(fail bool) {
	m.mu.Lock()
	m.failWrites = fail
	m.mu.Unlock()
}

func (m *memStore) model(t *testing.T, userID string) *progress.Model {
	t.Helper()
	doc, err := m.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("stored profile %s: %v", userID, err)
	}
	return progress.Load(doc, time.Now())
}

type fakeTimer struct {
	d       time.Duration
	fire    func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	f.stopped = true
	return true
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []cache.BadgeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event cache.BadgeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type progressHarness struct {
	svc       *ProgressService
	store     *memStore
	now       time.Time
	timers    []*fakeTimer
	published *recordingPublisher
}

func newProgressHarness(t *testing.T) *progressHarness {
	t.Helper()
	h := &progressHarness{
		store:     newMemStore(),
		now:       time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		published: &recordingPublisher{},
	}
	h.svc = NewProgressService(h.store, 30*time.Minute, logger.Nop())
	h.svc.now = func() time.Time { return h.now }
	h.svc.afterFunc = func(d time.Duration, f func()) stopper {
		timer := &fakeTimer{d: d, fire: f}
		h.timers = append(h.timers, timer)
		return timer
	}
	h.svc.newRandom = func() game.Random { return rand.New(rand.NewPCG(7, 11)) }
	h.svc.SetBadgePublisher(h.published)
	return h
}

func (h *progressHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

type sentMail struct {
	kind   string
	to     string
	token  string
	badges []models.Badge
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) IsEnabled() bool { return true }

func (f *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, childName string) error {
	f.record(sentMail{kind: "welcome", to: toEmail})
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	f.record(sentMail{kind: "reset", to: toEmail, token: resetToken})
	return nil
}

func (f *fakeMailer) SendBadgeEmail(ctx context.Context, toEmail, childName string, badges []models.Badge) error {
	f.record(sentMail{kind: "badge", to: toEmail, badges: badges})
	return nil
}

func (f *fakeMailer) record(m sentMail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
}

func (f *fakeMailer) last(kind string) (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == kind {
			return f.sent[i], true
		}
	}
	return sentMail{}, false
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
