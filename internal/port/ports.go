// Package port defines the interfaces between services and infrastructure.
// Services depend on these, never on concrete upstream clients.
package port

import (
	"context"
	"io"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// RegionAPI is the upstream administrative-hierarchy surface.
type RegionAPI interface {
	// ListRegions fetches one page of children for (level, parentCode).
	// The bool reports whether more pages follow.
	ListRegions(ctx context.Context, token string, level int, parentCode string, page int) ([]domain.Region, bool, error)

	// FetchRegionLevel follows pagination to exhaustion and returns every
	// child of (level, parentCode).
	FetchRegionLevel(ctx context.Context, token string, level int, parentCode string) ([]domain.Region, error)

	// ResolveRegionPath returns the full province→village chain ending at
	// the region with the given id.
	ResolveRegionPath(ctx context.Context, token string, id int64) (domain.RegionPath, error)
}

// AuthAPI is the upstream authentication surface.
type AuthAPI interface {
	// Login exchanges credentials for an upstream token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)

	// Register creates a new upstream account.
	Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error)

	// Profile loads the user owning the given upstream token.
	Profile(ctx context.Context, token string) (*domain.User, error)
}

// Resource is a generic CRUD surface over one upstream collection
// (divisions, religions, prodis, ...).
type Resource[T any] interface {
	List(ctx context.Context, token string, p domain.ListParams) (domain.Page[T], error)
	Get(ctx context.Context, token, id string) (*T, error)
	Create(ctx context.Context, token string, in T) (*T, error)
	Update(ctx context.Context, token, id string, in T) (*T, error)
	Delete(ctx context.Context, token, id string) error
}

// ProposalAPI covers the proposal workflow beyond plain CRUD.
type ProposalAPI interface {
	ListProposals(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.Proposal], error)
	OwnProposals(ctx context.Context, token string) ([]domain.Proposal, error)
	SubmitProposal(ctx context.Context, token string, in domain.Proposal) (*domain.Proposal, error)
	ApproveProposal(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error)
	RejectProposal(ctx context.Context, token string, id int64, note string) (*domain.Proposal, error)
}

// UploadAPI submits bulk CSV/XLSX imports for a record kind
// ("mahasiswa", "dosen").
type UploadAPI interface {
	UploadRecords(ctx context.Context, token, kind, filename string, file io.Reader) (*domain.UploadSummary, error)
}
