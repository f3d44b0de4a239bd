package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
	"github.com/sakif/idealab/internal/repository"
)

// =========================================================================
// MOCKS
// =========================================================================
//
// Hand-written in-memory fakes for the repository interfaces. The mock
// idea store applies the visibility filter the same way the sqlite layer
// does, so the service tests exercise the real read rules.

type mockIdeaStore struct {
	ideas  map[int64]*model.Idea
	nextID int64
}

var _ repository.RecordStore[*model.Idea] = (*mockIdeaStore)(nil)

func newMockIdeaStore() *mockIdeaStore {
	return &mockIdeaStore{ideas: make(map[int64]*model.Idea)}
}

func (m *mockIdeaStore) visible(idea *model.Idea, vis policy.Visibility) bool {
	switch vis.Scope {
	case policy.ScopeAll:
		return true
	case policy.ScopePublished:
		return idea.Published
	case policy.ScopePublishedOrOwn:
		return idea.Published || idea.UserID == vis.OwnerID
	case policy.ScopeOwn:
		return idea.UserID == vis.OwnerID
	default:
		return false
	}
}

func (m *mockIdeaStore) Create(_ context.Context, idea *model.Idea) error {
	m.nextID++
	idea.ID = m.nextID
	stored := *idea
	m.ideas[idea.ID] = &stored
	return nil
}

func (m *mockIdeaStore) Get(_ context.Context, id int64) (*model.Idea, error) {
	idea, ok := m.ideas[id]
	if !ok {
		return nil, apperror.NotFound("idea", strconv.FormatInt(id, 10))
	}
	result := *idea
	return &result, nil
}

func (m *mockIdeaStore) GetVisible(ctx context.Context, id int64, vis policy.Visibility) (*model.Idea, error) {
	idea, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.visible(idea, vis) {
		return nil, apperror.NotFound("idea", strconv.FormatInt(id, 10))
	}
	return idea, nil
}

func (m *mockIdeaStore) List(_ context.Context, vis policy.Visibility) ([]*model.Idea, error) {
	result := make([]*model.Idea, 0, len(m.ideas))
	for _, idea := range m.ideas {
		if m.visible(idea, vis) {
			stored := *idea
			result = append(result, &stored)
		}
	}
	return result, nil
}

func (m *mockIdeaStore) Update(_ context.Context, idea *model.Idea) error {
	if _, ok := m.ideas[idea.ID]; !ok {
		return apperror.NotFound("idea", strconv.FormatInt(idea.ID, 10))
	}
	stored := *idea
	m.ideas[idea.ID] = &stored
	return nil
}

func (m *mockIdeaStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.ideas[id]; !ok {
		return apperror.NotFound("idea", strconv.FormatInt(id, 10))
	}
	delete(m.ideas, id)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRecords(t *testing.T) (*Records[*model.Idea], *mockIdeaStore) {
	t.Helper()
	store := newMockIdeaStore()
	svc := NewRecords(store, policy.KindIdea, model.IdeaFields,
		func() *model.Idea { return &model.Idea{} }, "idea", testLogger())
	return svc, store
}

func ideaInput() map[string]string {
	return map[string]string{
		"title":   "A Bright Idea",
		"body":    "It would work like this.",
		"name":    "Someone",
		"contact": "someone@example.com",
	}
}

var (
	alice = policy.Actor{ID: "alice"}
	bob   = policy.Actor{ID: "bob"}
	root  = policy.Actor{ID: "root", Admin: true}
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestRecordsCreate_Success(t *testing.T) {
	svc, _ := newTestRecords(t)

	idea, err := svc.Create(context.Background(), alice, ideaInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if idea.ID == 0 {
		t.Error("expected idea to have an id")
	}
	if idea.UserID != "alice" {
		t.Errorf("UserID = %q, want %q", idea.UserID, "alice")
	}
	if idea.Published {
		t.Error("new ideas must start unpublished")
	}
}

func TestRecordsCreate_Anonymous(t *testing.T) {
	svc, store := newTestRecords(t)

	_, err := svc.Create(context.Background(), policy.Actor{}, ideaInput())
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
	if len(store.ideas) != 0 {
		t.Error("anonymous create must not persist anything")
	}
}

func TestRecordsCreate_MissingFieldPersistsNothing(t *testing.T) {
	svc, store := newTestRecords(t)

	input := ideaInput()
	delete(input, "contact")

	_, err := svc.Create(context.Background(), alice, input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if len(store.ideas) != 0 {
		t.Error("invalid create must not persist anything")
	}
}

func TestRecordsCreate_TruncatesLongTitle(t *testing.T) {
	svc, _ := newTestRecords(t)

	input := ideaInput()
	input["title"] = strings.Repeat("x", model.MaxIdeaTitleLength+100)

	idea, err := svc.Create(context.Background(), alice, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(idea.Title) != model.MaxIdeaTitleLength {
		t.Errorf("title length = %d, want %d", len(idea.Title), model.MaxIdeaTitleLength)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestRecordsGet_InvisibleIsNotFound(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, err := svc.Create(context.Background(), alice, ideaInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Unpublished: the owner sees it, another user gets the same NotFound
	// as for an id that does not exist.
	if _, err := svc.Get(context.Background(), alice, created.ID); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), bob, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("other user Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), policy.Actor{}, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("anonymous Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), root, created.ID); err != nil {
		t.Errorf("admin Get() error = %v", err)
	}
}

func TestRecordsList_FiltersByActor(t *testing.T) {
	svc, store := newTestRecords(t)

	// One unpublished idea each for alice and bob, one published.
	if _, err := svc.Create(context.Background(), alice, ideaInput()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := svc.Create(context.Background(), bob, ideaInput()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	published, err := svc.Create(context.Background(), bob, ideaInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	store.ideas[published.ID].Published = true

	tests := []struct {
		name  string
		actor policy.Actor
		want  int
	}{
		{"anonymous sees published only", policy.Actor{}, 1},
		{"alice sees published plus own", alice, 2},
		{"bob sees published plus own", bob, 3},
		{"admin sees all", root, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.actor)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() returned %d, want %d", len(got), tt.want)
			}
		})
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestRecordsUpdate_Owner(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	input := ideaInput()
	input["title"] = "Revised"

	updated, err := svc.Update(context.Background(), alice, created.ID, input)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Revised" {
		t.Errorf("Title = %q, want %q", updated.Title, "Revised")
	}
}

func TestRecordsUpdate_WrongOwner(t *testing.T) {
	svc, store := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	input := ideaInput()
	input["title"] = "Hijacked"

	_, err := svc.Update(context.Background(), bob, created.ID, input)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
	if store.ideas[created.ID].Title == "Hijacked" {
		t.Error("forbidden update must not persist")
	}
}

func TestRecordsUpdate_AdminMayEditAnything(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	if _, err := svc.Update(context.Background(), root, created.ID, ideaInput()); err != nil {
		t.Errorf("admin Update() error = %v", err)
	}
}

func TestRecordsUpdate_InvalidInputLeavesRecordUntouched(t *testing.T) {
	svc, store := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	input := ideaInput()
	input["body"] = "   "

	_, err := svc.Update(context.Background(), alice, created.ID, input)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if store.ideas[created.ID].Body != "It would work like this." {
		t.Error("invalid update must leave the stored record untouched")
	}
}

func TestRecordsUpdate_NotFound(t *testing.T) {
	svc, _ := newTestRecords(t)

	_, err := svc.Update(context.Background(), alice, 999, ideaInput())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestRecordsDelete_Owner(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	if err := svc.Delete(context.Background(), alice, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), alice, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestRecordsDelete_WrongOwner(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	if err := svc.Delete(context.Background(), bob, created.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestRecordsDelete_Anonymous(t *testing.T) {
	svc, _ := newTestRecords(t)

	created, _ := svc.Create(context.Background(), alice, ideaInput())

	if err := svc.Delete(context.Background(), policy.Actor{}, created.ID); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}
