package service

import (
	"context"
	"log/slog"

	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
	"github.com/sakif/idealab/internal/repository"
)

// Ideas is the idea service: the generic CRUD plus read-time vote
// enrichment. Mutations come straight from the embedded Records; only the
// read paths differ, because every idea view carries its vote count and
// whether the requesting actor has voted for it.
type Ideas struct {
	*Records[*model.Idea]
	votes *VoteCounter
}

// NewIdeas builds the idea service.
func NewIdeas(store repository.RecordStore[*model.Idea], votes *VoteCounter, logger *slog.Logger) *Ideas {
	return &Ideas{
		Records: NewRecords(store, policy.KindIdea, model.IdeaFields,
			func() *model.Idea { return &model.Idea{} }, "idea", logger),
		votes: votes,
	}
}

// ListViews returns the actor's visible ideas as wire views with votes and
// loved filled in.
func (s *Ideas) ListViews(ctx context.Context, actor policy.Actor) ([]model.IdeaView, error) {
	ideas, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	counts, voted, err := s.enrichment(ctx, actor)
	if err != nil {
		return nil, err
	}

	views := make([]model.IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		views = append(views, s.view(idea, counts, voted))
	}
	return views, nil
}

// GetView returns one visible idea as an enriched wire view.
func (s *Ideas) GetView(ctx context.Context, actor policy.Actor, id int64) (model.IdeaView, error) {
	idea, err := s.Get(ctx, actor, id)
	if err != nil {
		return model.IdeaView{}, err
	}

	counts, voted, err := s.enrichment(ctx, actor)
	if err != nil {
		return model.IdeaView{}, err
	}

	return s.view(idea, counts, voted), nil
}

func (s *Ideas) enrichment(ctx context.Context, actor policy.Actor) (map[int64]int, map[int64]bool, error) {
	counts, err := s.votes.Counts(ctx)
	if err != nil {
		return nil, nil, err
	}

	var voted map[int64]bool
	if actor.Authenticated() {
		voted, err = s.votes.VotedBy(ctx, actor.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	return counts, voted, nil
}

func (s *Ideas) view(idea *model.Idea, counts map[int64]int, voted map[int64]bool) model.IdeaView {
	v := idea.View().(model.IdeaView)
	v.Votes = counts[idea.ID]
	v.Loved = voted[idea.ID]
	return v
}
