// Package service holds the gateway's application services, sitting
// between the HTTP handlers and the upstream ports.
package service

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/port"
)

var tracer = otel.Tracer("service")

// Collections bundles the typed upstream CRUD surfaces.
type Collections struct {
	Divisions       port.Resource[domain.Division]
	Roles           port.Resource[domain.Role]
	Users           port.Resource[domain.User]
	Religions       port.Resource[domain.Religion]
	EducationLevels port.Resource[domain.EducationLevel]
	StudyPrograms   port.Resource[domain.StudyProgram]
	Concentrations  port.Resource[domain.Concentration]
	Students        port.Resource[domain.Student]
	Lecturers       port.Resource[domain.Lecturer]
	Supervisions    port.Resource[domain.Supervision]
}

// Records serves master-data reads and writes. The small, rarely changing
// lookups (religions, education levels) are cached whole; everything else
// goes straight upstream so edits show up immediately.
type Records struct {
	cols       Collections
	uploads    port.UploadAPI
	religions  *cache.InMemory[[]domain.Religion]
	educations *cache.InMemory[[]domain.EducationLevel]
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewRecords wires the records service.
func NewRecords(cols Collections, uploads port.UploadAPI, religions *cache.InMemory[[]domain.Religion], educations *cache.InMemory[[]domain.EducationLevel], logger *zap.Logger, metrics *observability.Metrics) *Records {
	return &Records{
		cols:       cols,
		uploads:    uploads,
		religions:  religions,
		educations: educations,
		logger:     logger,
		metrics:    metrics,
	}
}

// Collections exposes the typed CRUD surfaces to the handlers.
func (r *Records) Collections() Collections { return r.cols }

const (
	religionsKey  = "religions"
	educationsKey = "educations"
)

// ListReligions returns the full religion lookup, cached.
func (r *Records) ListReligions(ctx context.Context, token string) ([]domain.Religion, error) {
	ctx, span := tracer.Start(ctx, "Records.ListReligions")
	defer span.End()

	if items, ok := r.religions.Get(religionsKey); ok {
		r.metrics.IncrCacheHit("lookups")
		return items, nil
	}
	r.metrics.IncrCacheMiss("lookups")

	page, err := r.cols.Religions.List(ctx, token, domain.ListParams{})
	if err != nil {
		return nil, err
	}
	r.religions.Set(religionsKey, page.Items)
	return page.Items, nil
}

// ListEducationLevels returns the full education-level lookup, cached.
func (r *Records) ListEducationLevels(ctx context.Context, token string) ([]domain.EducationLevel, error) {
	ctx, span := tracer.Start(ctx, "Records.ListEducationLevels")
	defer span.End()

	if items, ok := r.educations.Get(educationsKey); ok {
		r.metrics.IncrCacheHit("lookups")
		return items, nil
	}
	r.metrics.IncrCacheMiss("lookups")

	page, err := r.cols.EducationLevels.List(ctx, token, domain.ListParams{})
	if err != nil {
		return nil, err
	}
	r.educations.Set(educationsKey, page.Items)
	return page.Items, nil
}

// InvalidateLookups drops the cached lookups after a write to either
// collection.
func (r *Records) InvalidateLookups() {
	r.religions.Delete(religionsKey)
	r.educations.Delete(educationsKey)
}

// Upload forwards a bulk import.
func (r *Records) Upload(ctx context.Context, token, kind, filename string, file io.Reader) (*domain.UploadSummary, error) {
	ctx, span := tracer.Start(ctx, "Records.Upload")
	defer span.End()

	summary, err := r.uploads.UploadRecords(ctx, token, kind, filename, file)
	if err != nil {
		return nil, err
	}
	r.logger.Info("bulk upload processed",
		zap.String("kind", kind),
		zap.String("filename", filename),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}
