package arsip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// ListProposals fetches proposals for reviewers. Implements port.ProposalAPI.
func (c *Client) ListProposals(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.Proposal], error) {
	ctx, span := tracer.Start(ctx, "Arsip.ListProposals")
	defer span.End()

	q := url.Values{}
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	path := "/proposals/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page domain.Page[domain.Proposal]
	err := c.execute(ctx, "proposals", func() error {
		raw, err := c.do(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}
		items, total, _, err := decodeList[domain.Proposal](raw)
		if err != nil {
			return err
		}
		page = domain.Page[domain.Proposal]{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return domain.Page[domain.Proposal]{}, err
	}
	if page.Items == nil {
		page.Items = []domain.Proposal{}
	}
	return page, nil
}

// OwnProposals fetches the requesting student's own submissions.
func (c *Client) OwnProposals(ctx context.Context, token string) ([]domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Arsip.OwnProposals")
	defer span.End()

	var proposals []domain.Proposal
	err := c.execute(ctx, "proposals", func() error {
		raw, err := c.do(ctx, http.MethodGet, "/proposals/own/", token, nil)
		if err != nil {
			return err
		}
		items, _, _, err := decodeList[domain.Proposal](raw)
		if err != nil {
			return err
		}
		proposals = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	if proposals == nil {
		proposals = []domain.Proposal{}
	}
	return proposals, nil
}

// SubmitProposal creates a new pending proposal.
func (c *Client) SubmitProposal(ctx context.Context, token string, in domain.Proposal) (*domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Arsip.SubmitProposal")
	defer span.End()

	var out *domain.Proposal
	err := c.executeWrite(ctx, "proposals", func() error {
		raw, err := c.do(ctx, http.MethodPost, "/proposals/", token, in)
		if err != nil {
			return err
		}
		var p domain.Proposal
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decode proposal: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveProposal marks a proposal approved, with an optional note.
func (c *Client) ApproveProposal(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error) {
	return c.decide(ctx, token, id, "approve", note)
}

// RejectProposal marks a proposal rejected. The backend requires a
// non-empty note and answers 400 without one; the service layer checks
// first so the round-trip is usually skipped.
func (c *Client) RejectProposal(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error) {
	return c.decide(ctx, token, id, "reject", note)
}

func (c *Client) decide(ctx context.Context, token string, id int64, action, note string) (*domain.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Arsip.DecideProposal")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("proposal.id", id),
		attribute.String("proposal.action", action),
	)

	path := fmt.Sprintf("/proposals/%d/%s/", id, action)
	payload := domain.ProposalDecision{Note: note}

	var out *domain.Proposal
	err := c.executeWrite(ctx, "proposals", func() error {
		raw, err := c.do(ctx, http.MethodPost, path, token, payload)
		if err != nil {
			return err
		}
		var p domain.Proposal
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decode proposal: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, c.remapProposalNotFound(err, id)
	}
	return out, nil
}

func (c *Client) remapProposalNotFound(err error, id int64) error {
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return &domain.ErrNotFound{Resource: "proposal", ID: strconv.FormatInt(id, 10)}
	}
	return err
}
