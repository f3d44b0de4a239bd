package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/idealab/internal/auth"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/service"
)

// IdeaHandler serves the idea endpoints. Mutations delegate to the shared
// record handler; reads use the idea service's enriched views so every
// idea carries its vote count and the caller's loved flag; and the vote
// toggle lives here because it is an idea-only operation.
type IdeaHandler struct {
	*RecordHandler[*model.Idea]
	ideas  *service.Ideas
	votes  *service.VoteCounter
	logger *slog.Logger
}

// NewIdeaHandler creates the idea handler.
func NewIdeaHandler(ideas *service.Ideas, votes *service.VoteCounter, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{
		RecordHandler: NewRecordHandler(ideas.Records, logger),
		ideas:         ideas,
		votes:         votes,
		logger:        logger,
	}
}

// HandleList returns all visible ideas with vote enrichment.
func (h *IdeaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	views, err := h.ideas.ListViews(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", views)
}

// HandleGet returns one visible idea with vote enrichment.
func (h *IdeaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	view, err := h.ideas.GetView(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", view)
}

// loveResult is the data payload of a vote toggle.
type loveResult struct {
	Loved bool `json:"loved"`
	Votes int  `json:"votes"`
}

// HandleLove toggles the actor's vote on an idea.
//
// HTTP: PUT /love/idea/{id} (auth required)
//
// One endpoint for both directions: the current state decides whether
// this casts or retracts, so clients can't double-vote by replaying.
func (h *IdeaHandler) HandleLove(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	loved, votes, err := h.votes.Toggle(r.Context(), actor.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Vote retracted"
	if loved {
		message = "Vote cast"
	}
	writeStatus(w, http.StatusOK, message, loveResult{Loved: loved, Votes: votes})
}
