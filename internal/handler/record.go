package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/idealab/internal/auth"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/service"
)

// RecordHandler serves the CRUD endpoints for one record type. Like the
// service beneath it, it is generic: improvements use it as-is, ideas wrap
// it to add vote enrichment on reads.
type RecordHandler[T model.Record] struct {
	service *service.Records[T]
	logger  *slog.Logger
}

// NewRecordHandler creates a handler over a record service.
func NewRecordHandler[T model.Record](svc *service.Records[T], logger *slog.Logger) *RecordHandler[T] {
	return &RecordHandler[T]{service: svc, logger: logger}
}

// recordID parses the {id} path segment. A non-numeric id gets the same
// 404 as an unknown one — ids are numeric by construction, so anything
// else cannot name a record.
func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeStatus(w, http.StatusNotFound, "", nil)
		return 0, false
	}
	return id, true
}

// decodeFields reads the request body as a flat JSON object of strings,
// the submission format for every record type.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var input map[string]string
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeStatus(w, http.StatusBadRequest, "request body must be a JSON object of string fields", nil)
		return nil, false
	}
	return input, true
}

// HandleList returns all records visible to the requesting actor.
func (h *RecordHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	recs, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]any, 0, len(recs))
	for _, rec := range recs {
		views = append(views, rec.View())
	}
	writeStatus(w, http.StatusOK, "", views)
}

// HandleGet returns a single record, or 404 — whether the id is unknown or
// merely invisible to this actor is deliberately indistinguishable.
func (h *RecordHandler[T]) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", rec.View())
}

// HandleCreate validates and stores a new record for the logged-in actor.
func (h *RecordHandler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	input, ok := decodeFields(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusCreated, "", rec.View())
}

// HandleUpdate applies a full replacement of the record's writable fields.
func (h *RecordHandler[T]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, ok := recordID(w, r)
	if !ok {
		return
	}
	input, ok := decodeFields(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Update(r.Context(), actor, id, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", rec.View())
}

// HandleDelete removes the record permanently.
func (h *RecordHandler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", nil)
}
