package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/port"
)

// Proposals implements the proposal review workflow.
type Proposals struct {
	api    port.ProposalAPI
	logger *zap.Logger
}

// NewProposals wires the proposal service.
func NewProposals(api port.ProposalAPI, logger *zap.Logger) *Proposals {
	return &Proposals{api: api, logger: logger}
}

// List returns proposals for reviewers.
func (p *Proposals) List(ctx context.Context, token string, params domain.ListParams) (domain.Page[domain.Proposal], error) {
	ctx, span := tracer.Start(ctx, "Proposals.List")
	defer span.End()
	return p.api.ListProposals(ctx, token, params)
}

// Own returns the caller's submissions.
func (p *Proposals) Own(ctx context.Context, token string) ([]domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Proposals.Own")
	defer span.End()
	return p.api.OwnProposals(ctx, token)
}

// Submit creates a new pending proposal.
func (p *Proposals) Submit(ctx context.Context, token string, in domain.Proposal) (*domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Proposals.Submit")
	defer span.End()

	if strings.TrimSpace(in.Title) == "" {
		return nil, &domain.ErrValidation{Field: "judul", Message: "title is required"}
	}
	return p.api.SubmitProposal(ctx, token, in)
}

// Approve marks a proposal approved. The note is optional.
func (p *Proposals) Approve(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Proposals.Approve")
	defer span.End()

	out, err := p.api.ApproveProposal(ctx, token, id, note)
	if err != nil {
		return nil, err
	}
	p.logger.Info("proposal approved", zap.Int64("proposal_id", id))
	return out, nil
}

// Reject marks a proposal rejected. A rejection without a note is refused
// before any upstream call: the student must be told why.
func (p *Proposals) Reject(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Proposals.Reject")
	defer span.End()

	if strings.TrimSpace(note) == "" {
		return nil, &domain.ErrValidation{Field: "catatan", Message: "a note is required when rejecting a proposal"}
	}
	out, err := p.api.RejectProposal(ctx, token, id, note)
	if err != nil {
		return nil, err
	}
	p.logger.Info("proposal rejected", zap.Int64("proposal_id", id))
	return out, nil
}
