package service

import (
	"log/slog"

	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
	"github.com/sakif/idealab/internal/repository"
)

// NewImprovements builds the improvement service. Improvements have no
// enrichment, so the generic CRUD service is the whole service.
func NewImprovements(store repository.RecordStore[*model.Improvement], logger *slog.Logger) *Records[*model.Improvement] {
	return NewRecords(store, policy.KindImprovement, model.ImprovementFields,
		func() *model.Improvement { return &model.Improvement{} }, "improvement", logger)
}
