package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// countingResource answers every list with a fixed total.
type countingResource[T any] struct {
	total int
	err   error
	calls atomic.Int32
}

func (r *countingResource[T]) List(_ context.Context, _ string, _ domain.ListParams) (domain.Page[T], error) {
	r.calls.Add(1)
	if r.err != nil {
		return domain.Page[T]{}, r.err
	}
	return domain.Page[T]{Total: r.total}, nil
}

func (r *countingResource[T]) Get(_ context.Context, _, _ string) (*T, error) { return nil, nil }
func (r *countingResource[T]) Create(_ context.Context, _ string, _ T) (*T, error) {
	return nil, nil
}
func (r *countingResource[T]) Update(_ context.Context, _, _ string, _ T) (*T, error) {
	return nil, nil
}
func (r *countingResource[T]) Delete(_ context.Context, _, _ string) error { return nil }

type stubProposals struct {
	pending   int
	lastQuery domain.ListParams
}

func (s *stubProposals) ListProposals(_ context.Context, _ string, p domain.ListParams) (domain.Page[domain.Proposal], error) {
	s.lastQuery = p
	return domain.Page[domain.Proposal]{Total: s.pending}, nil
}

func (s *stubProposals) OwnProposals(_ context.Context, _ string) ([]domain.Proposal, error) {
	return nil, nil
}

func (s *stubProposals) SubmitProposal(_ context.Context, _ string, in domain.Proposal) (*domain.Proposal, error) {
	return &in, nil
}

func (s *stubProposals) ApproveProposal(_ context.Context, _ string, _ int64, _ string) (*domain.Proposal, error) {
	return nil, nil
}

func (s *stubProposals) RejectProposal(_ context.Context, _ string, _ int64, _ string) (*domain.Proposal, error) {
	return nil, nil
}

func TestDashboard_StatsAggregatesCounts(t *testing.T) {
	students := &countingResource[domain.Student]{total: 812}
	lecturers := &countingResource[domain.Lecturer]{total: 47}
	programs := &countingResource[domain.StudyProgram]{total: 6}
	proposals := &stubProposals{pending: 12}

	d := service.NewDashboard(service.Collections{
		Students:      students,
		Lecturers:     lecturers,
		StudyPrograms: programs,
	}, proposals, observability.NewMetrics(), zap.NewNop())

	stats, err := d.Stats(context.Background(), "tok")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Students != 812 || stats.Lecturers != 47 || stats.StudyPrograms != 6 || stats.PendingProposals != 12 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if proposals.lastQuery.Status != domain.ProposalPending {
		t.Errorf("expected pending filter, got %q", proposals.lastQuery.Status)
	}
}

func TestDashboard_StatsPropagatesFailure(t *testing.T) {
	students := &countingResource[domain.Student]{
		err: &domain.ErrUpstream{Op: "GET /mahasiswa/", Status: 503, Message: "down"},
	}

	d := service.NewDashboard(service.Collections{
		Students:      students,
		Lecturers:     &countingResource[domain.Lecturer]{total: 1},
		StudyPrograms: &countingResource[domain.StudyProgram]{total: 1},
	}, &stubProposals{}, observability.NewMetrics(), zap.NewNop())

	var upstream *domain.ErrUpstream
	if _, err := d.Stats(context.Background(), "tok"); !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
