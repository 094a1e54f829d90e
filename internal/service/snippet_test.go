package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sakif/snippet-manager/internal/apperror"
	"github.com/sakif/snippet-manager/internal/model"
	sqliteRepo "github.com/sakif/snippet-manager/internal/repository/sqlite"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockSnippetRepo keeps snippets in a map and mirrors the store's contract:
// unknown ids are silent for Update/Delete and NotFound for ToggleFavorite.
// It also counts how many calls are inside it at once, which lets the
// concurrency test prove the service lock works.

type mockSnippetRepo struct {
	snippets map[int64]*model.Snippet
	nextID   int64
	err      error // when set, every call fails with it

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	lastUpdate  *model.Snippet
}

func newMockRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[int64]*model.Snippet)}
}

func (m *mockSnippetRepo) enter() func() {
	n := m.inFlight.Add(1)
	for {
		peak := m.maxInFlight.Load()
		if n <= peak || m.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	// Widen the window so an unserialized caller would overlap.
	time.Sleep(time.Millisecond)
	return func() { m.inFlight.Add(-1) }
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) (int64, error) {
	defer m.enter()()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	snippet.ID = m.nextID
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return snippet.ID, nil
}

func (m *mockSnippetRepo) List(_ context.Context) ([]model.Snippet, error) {
	defer m.enter()()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Snippet, 0, len(m.snippets))
	for _, s := range m.snippets {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	defer m.enter()()
	if m.err != nil {
		return m.err
	}
	copied := *snippet
	m.lastUpdate = &copied
	stored, ok := m.snippets[snippet.ID]
	if !ok {
		return nil
	}
	stored.Title = snippet.Title
	stored.Code = snippet.Code
	stored.Language = snippet.Language
	stored.Tags = snippet.Tags
	stored.UpdatedAt = snippet.UpdatedAt
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id int64) error {
	defer m.enter()()
	if m.err != nil {
		return m.err
	}
	delete(m.snippets, id)
	return nil
}

func (m *mockSnippetRepo) Search(_ context.Context, _ string) ([]model.Snippet, error) {
	defer m.enter()()
	if m.err != nil {
		return nil, m.err
	}
	return []model.Snippet{}, nil
}

func (m *mockSnippetRepo) ToggleFavorite(_ context.Context, id int64) (bool, error) {
	defer m.enter()()
	if m.err != nil {
		return false, m.err
	}
	s, ok := m.snippets[id]
	if !ok {
		return false, apperror.NotFound("snippet", id)
	}
	s.IsFavorite = !s.IsFavorite
	return s.IsFavorite, nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedClock returns a clock that advances by one second per reading.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Second)
		return now
	}
}

func newTestService(t *testing.T) (*SnippetService, *mockSnippetRepo) {
	t.Helper()
	repo := newMockRepo()
	return NewSnippetService(repo, testLogger(), WithClock(fixedClock())), repo
}

// newSQLiteService wires the service to a real in-memory store.
func newSQLiteService(t *testing.T) *SnippetService {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSnippetService(db, testLogger(), WithClock(fixedClock()))
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreate_StampsEqualTimestamps(t *testing.T) {
	svc, repo := newTestService(t)

	id, err := svc.Create(context.Background(), "hello", "print(1)", "python", "a, b")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored := repo.snippets[id]
	if stored.CreatedAt == "" {
		t.Fatal("CreatedAt not stamped")
	}
	if stored.CreatedAt != stored.UpdatedAt {
		t.Errorf("CreatedAt %q != UpdatedAt %q", stored.CreatedAt, stored.UpdatedAt)
	}
	if stored.CreatedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q, want first clock reading", stored.CreatedAt)
	}
}

func TestCreate_NoValidation(t *testing.T) {
	svc, _ := newTestService(t)

	// Empty fields are stored as given.
	if _, err := svc.Create(context.Background(), "", "", "", ""); err != nil {
		t.Errorf("Create() with empty fields error = %v, want nil", err)
	}
}

func TestCreate_StoreErrorPropagates(t *testing.T) {
	svc, repo := newTestService(t)
	repo.err = apperror.Store("sqlite: creating snippet", errors.New("disk full"))

	_, err := svc.Create(context.Background(), "t", "c", "go", "")
	if !errors.Is(err, apperror.ErrStore) {
		t.Errorf("error = %v, want ErrStore", err)
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdate_SendsEmptyCreatedAt(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	id, _ := svc.Create(ctx, "t", "c", "go", "")

	if err := svc.Update(ctx, id, "t2", "c2", "rust", "x"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if repo.lastUpdate.CreatedAt != "" {
		t.Errorf("Update sent CreatedAt %q, want empty", repo.lastUpdate.CreatedAt)
	}
	if repo.lastUpdate.UpdatedAt != "2026-03-01T12:00:01Z" {
		t.Errorf("Update sent UpdatedAt %q, want second clock reading", repo.lastUpdate.UpdatedAt)
	}
	if repo.snippets[id].CreatedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("stored CreatedAt changed to %q", repo.snippets[id].CreatedAt)
	}
}

func TestUpdate_UnknownIDSucceeds(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Update(context.Background(), 77, "t", "c", "go", ""); err != nil {
		t.Errorf("Update() unknown id error = %v, want nil", err)
	}
}

// =========================================================================
// DELETE / TOGGLE
// =========================================================================

func TestDelete_UnknownIDSucceeds(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Delete(context.Background(), 77); err != nil {
		t.Errorf("Delete() unknown id error = %v, want nil", err)
	}
}

func TestToggleFavorite_UnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ToggleFavorite(context.Background(), 77)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListAndSearch_StoreErrors(t *testing.T) {
	svc, repo := newTestService(t)
	repo.err = apperror.Store("sqlite: listing snippets", errors.New("boom"))
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, apperror.ErrStore) {
		t.Errorf("List() error = %v, want ErrStore", err)
	}
	if _, err := svc.Search(ctx, "x"); !errors.Is(err, apperror.ErrStore) {
		t.Errorf("Search() error = %v, want ErrStore", err)
	}
}

// =========================================================================
// CONCURRENCY
// =========================================================================

func TestConcurrentCallsAreSerialized(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				svc.Create(ctx, "t", "c", "go", "")
			case 1:
				svc.List(ctx)
			case 2:
				svc.Search(ctx, "t")
			case 3:
				svc.ToggleFavorite(ctx, 1)
			}
		}(i)
	}
	wg.Wait()

	if got := repo.maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent repository calls = %d, want 1", got)
	}
	if len(repo.snippets) != 5 {
		t.Errorf("created %d snippets, want 5", len(repo.snippets))
	}
}

// =========================================================================
// END-TO-END AGAINST SQLITE
// =========================================================================

func TestSQLite_UpdateTwiceKeepsCreatedAt(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "title", "code", "go", "tag")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before, _ := svc.List(ctx)

	for i := 0; i < 2; i++ {
		if err := svc.Update(ctx, id, "new", "new code", "rust", "t1, t2"); err != nil {
			t.Fatalf("Update() #%d error = %v", i, err)
		}
	}

	after, _ := svc.List(ctx)
	got := after[0]
	if got.Title != "new" || got.Code != "new code" || got.Language != "rust" || got.Tags != "t1, t2" {
		t.Errorf("fields after update = %+v", got)
	}
	if got.CreatedAt != before[0].CreatedAt {
		t.Errorf("CreatedAt changed: %q → %q", before[0].CreatedAt, got.CreatedAt)
	}
	if got.UpdatedAt == before[0].UpdatedAt {
		t.Error("UpdatedAt should move with the clock")
	}
}

func TestSQLite_ToggleSequence(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()
	id, _ := svc.Create(ctx, "fav", "", "go", "")

	list, _ := svc.List(ctx)
	if list[0].IsFavorite {
		t.Fatal("new snippet should start as not favorite")
	}

	for i, want := range []bool{true, false} {
		got, err := svc.ToggleFavorite(ctx, id)
		if err != nil {
			t.Fatalf("toggle %d error = %v", i, err)
		}
		if got != want {
			t.Errorf("toggle %d = %v, want %v", i, got, want)
		}
		list, _ = svc.List(ctx)
		if list[0].IsFavorite != want {
			t.Errorf("toggle %d persisted %v, want %v", i, list[0].IsFavorite, want)
		}
	}
}
