package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/port"
)

// Dashboard aggregates the landing-page counts and the gateway's own
// health counters.
type Dashboard struct {
	students  port.Resource[domain.Student]
	lecturers port.Resource[domain.Lecturer]
	programs  port.Resource[domain.StudyProgram]
	proposals port.ProposalAPI
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDashboard wires the dashboard service.
func NewDashboard(cols Collections, proposals port.ProposalAPI, metrics *observability.Metrics, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		students:  cols.Students,
		lecturers: cols.Lecturers,
		programs:  cols.StudyPrograms,
		proposals: proposals,
		metrics:   metrics,
		logger:    logger,
	}
}

// Stats fans out the four count queries concurrently. Each one asks for a
// single-item page and reads the total; the upstream reports the full
// count regardless of page size.
func (d *Dashboard) Stats(ctx context.Context, token string) (*domain.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.Stats")
	defer span.End()

	one := domain.ListParams{Page: 1, PageSize: 1}
	stats := &domain.DashboardStats{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := d.students.List(ctx, token, one)
		if err != nil {
			return err
		}
		stats.Students = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := d.lecturers.List(ctx, token, one)
		if err != nil {
			return err
		}
		stats.Lecturers = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := d.programs.List(ctx, token, one)
		if err != nil {
			return err
		}
		stats.StudyPrograms = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := d.proposals.ListProposals(ctx, token, domain.ListParams{Page: 1, PageSize: 1, Status: domain.ProposalPending})
		if err != nil {
			return err
		}
		stats.PendingProposals = page.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Ops returns the gateway's own health counters.
func (d *Dashboard) Ops() *domain.OpsSnapshot {
	return d.metrics.Snapshot()
}
