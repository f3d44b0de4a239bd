package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
	"github.com/sakif/idealab/internal/repository"
)

// Records is the CRUD algorithm shared by every user-submitted record
// type. The type parameter plus three values — the record kind (for
// visibility rules), the field table (for validation), and a constructor —
// are the ONLY per-type variation; ideas and improvements run the exact
// same code paths.
//
// Reads filter at the query boundary (policy.Visible), mutations check
// ownership after the fetch (policy.CanMutate). See the policy package for
// why those are different enforcement points.
type Records[T model.Record] struct {
	store  repository.RecordStore[T]
	kind   policy.RecordKind
	fields []model.FieldSpec
	fresh  func() T
	name   string // record type name for logs and error messages
	logger *slog.Logger
}

// NewRecords builds the CRUD service for one record type.
func NewRecords[T model.Record](
	store repository.RecordStore[T],
	kind policy.RecordKind,
	fields []model.FieldSpec,
	fresh func() T,
	name string,
	logger *slog.Logger,
) *Records[T] {
	return &Records[T]{
		store:  store,
		kind:   kind,
		fields: fields,
		fresh:  fresh,
		name:   name,
		logger: logger,
	}
}

// List returns every record the actor may read, newest first.
func (s *Records[T]) List(ctx context.Context, actor policy.Actor) ([]T, error) {
	recs, err := s.store.List(ctx, policy.Visible(actor, s.kind))
	if err != nil {
		s.logger.Error("failed to list records",
			slog.String("type", s.name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing %ss: %w", s.name, err)
	}
	return recs, nil
}

// Get returns one record if the actor may read it. An id the actor may not
// see yields NotFound, identical to an id that was never issued.
func (s *Records[T]) Get(ctx context.Context, actor policy.Actor, id int64) (T, error) {
	return s.store.GetVisible(ctx, id, policy.Visible(actor, s.kind))
}

// Create validates and persists a new record owned by the actor.
//
// The field table is all-or-nothing: any missing required field rejects
// the whole submission and nothing is persisted. Values that pass are
// already trimmed and truncated by Collect.
func (s *Records[T]) Create(ctx context.Context, actor policy.Actor, input map[string]string) (T, error) {
	var zero T

	if !policy.CanCreate(actor) {
		return zero, apperror.Unauthenticated("login required to submit a " + s.name)
	}

	vals, err := model.Collect(s.fields, input)
	if err != nil {
		return zero, err
	}

	rec := s.fresh()
	rec.SetOwner(actor.ID)
	rec.Assign(vals)

	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.Error("failed to create record",
			slog.String("type", s.name),
			slog.String("error", err.Error()),
		)
		return zero, fmt.Errorf("creating %s: %w", s.name, err)
	}

	s.logger.Info("record created",
		slog.String("type", s.name),
		slog.String("userID", actor.ID),
	)

	return rec, nil
}

// Update validates and persists changes to an existing record.
//
// Checks run in order: session, existence, ownership, then the same
// all-or-nothing field validation as Create — an invalid submission leaves
// the stored record untouched, because nothing is assigned until Collect
// has accepted the whole input.
func (s *Records[T]) Update(ctx context.Context, actor policy.Actor, id int64, input map[string]string) (T, error) {
	var zero T

	if !actor.Authenticated() {
		return zero, apperror.Unauthenticated("login required to modify a " + s.name)
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	if !policy.CanMutate(actor, rec.OwnerID()) {
		return zero, apperror.Forbidden("only the owner or an admin may modify this " + s.name)
	}

	vals, err := model.Collect(s.fields, input)
	if err != nil {
		return zero, err
	}
	rec.Assign(vals)

	if err := s.store.Update(ctx, rec); err != nil {
		s.logger.Error("failed to update record",
			slog.String("type", s.name),
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return zero, fmt.Errorf("updating %s %d: %w", s.name, id, err)
	}

	s.logger.Info("record updated",
		slog.String("type", s.name),
		slog.Int64("id", id),
		slog.String("userID", actor.ID),
	)

	return rec, nil
}

// Delete permanently removes a record. Same session/existence/ownership
// checks as Update; no soft delete.
func (s *Records[T]) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if !actor.Authenticated() {
		return apperror.Unauthenticated("login required to delete a " + s.name)
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if !policy.CanMutate(actor, rec.OwnerID()) {
		return apperror.Forbidden("only the owner or an admin may delete this " + s.name)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("record deleted",
		slog.String("type", s.name),
		slog.Int64("id", id),
		slog.String("userID", actor.ID),
	)

	return nil
}
