package domain

import "time"

// Proposal review states.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Proposal is a thesis-topic submission awaiting review. Note carries the
// reviewer's catatan; rejections must include one.
type Proposal struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"mahasiswa"`
	StudentNIM  string    `json:"nim"`
	StudentName string    `json:"nama_mahasiswa"`
	Title       string    `json:"judul"`
	Description string    `json:"deskripsi,omitempty"`
	Status      string    `json:"status"`
	Note        string    `json:"catatan,omitempty"`
	ReviewedBy  string    `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProposalDecision is the reviewer input for approve/reject operations.
type ProposalDecision struct {
	Note string `json:"catatan"`
}
