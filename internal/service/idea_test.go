package service

import (
	"context"
	"testing"

	"github.com/sakif/idealab/internal/policy"
)

func newTestIdeas(t *testing.T) (*Ideas, *VoteCounter, *mockIdeaStore) {
	t.Helper()
	store := newMockIdeaStore()
	votes := NewVoteCounter(newMockVoteStore(), store, testLogger())
	return NewIdeas(store, votes, testLogger()), votes, store
}

func TestListViews_EnrichesVotesAndLoved(t *testing.T) {
	svc, votes, store := newTestIdeas(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, ideaInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	store.ideas[created.ID].Published = true

	if _, _, err := votes.Toggle(ctx, "alice", created.ID); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, err := votes.Toggle(ctx, "bob", created.ID); err != nil {
		t.Fatalf("setup: %v", err)
	}

	views, err := svc.ListViews(ctx, alice)
	if err != nil {
		t.Fatalf("ListViews() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("ListViews() returned %d views, want 1", len(views))
	}

	v := views[0]
	if v.Votes != 2 {
		t.Errorf("Votes = %d, want 2", v.Votes)
	}
	if !v.Loved {
		t.Error("Loved = false for a voter, want true")
	}
	if v.Slug != "a-bright-idea" {
		t.Errorf("Slug = %q, want %q", v.Slug, "a-bright-idea")
	}
}

func TestListViews_AnonymousNeverLoved(t *testing.T) {
	svc, votes, store := newTestIdeas(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, alice, ideaInput())
	store.ideas[created.ID].Published = true
	votes.Toggle(ctx, "alice", created.ID)

	views, err := svc.ListViews(ctx, policy.Actor{})
	if err != nil {
		t.Fatalf("ListViews() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("ListViews() returned %d views, want 1", len(views))
	}
	if views[0].Loved {
		t.Error("anonymous view reports Loved = true")
	}
	if views[0].Votes != 1 {
		t.Errorf("Votes = %d, want 1 — counts are public even when loved is not", views[0].Votes)
	}
}

func TestGetView_Enriched(t *testing.T) {
	svc, votes, _ := newTestIdeas(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, alice, ideaInput())
	votes.Toggle(ctx, "alice", created.ID)

	view, err := svc.GetView(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("GetView() error = %v", err)
	}
	if view.Votes != 1 || !view.Loved {
		t.Errorf("view Votes=%d Loved=%v, want 1 true", view.Votes, view.Loved)
	}
}
