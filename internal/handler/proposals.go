package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// HandleListProposals lists proposals for reviewers.
func HandleListProposals(svc *service.Proposals, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		page, err := svc.List(r.Context(), session.UpstreamToken, parseListParams(r))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// HandleOwnProposals lists the caller's own submissions.
func HandleOwnProposals(svc *service.Proposals, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		proposals, err := svc.Own(r.Context(), session.UpstreamToken)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Page[domain.Proposal]{Items: proposals, Total: len(proposals)})
	}
}

// HandleSubmitProposal creates a new pending proposal.
func HandleSubmitProposal(svc *service.Proposals, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Proposal
		if err := decodeBody(r, &in); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		session := SessionFromContext(r.Context())
		out, err := svc.Submit(r.Context(), session.UpstreamToken, in)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// HandleProposalDecision approves or rejects a proposal, depending on the
// route it is mounted under.
func HandleProposalDecision(svc *service.Proposals, logger *zap.Logger, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "id", Message: "id must be an integer"})
			return
		}

		var body domain.ProposalDecision
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		session := SessionFromContext(r.Context())
		var out *domain.Proposal
		if approve {
			out, err = svc.Approve(r.Context(), session.UpstreamToken, id, body.Note)
		} else {
			out, err = svc.Reject(r.Context(), session.UpstreamToken, id, body.Note)
		}
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
