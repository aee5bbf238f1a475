package domain

import "time"

// SuperAdminRoleName is the upstream display name of the unrestricted role.
// It is consulted once, at the mapping boundary in the arsip client; all
// permission checks go through Role.IsUnrestricted instead of comparing
// against this string.
const SuperAdminRoleName = "Super Admin"

// Permission is a single grantable capability, matched by codename.
type Permission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// Role groups permissions. IsUnrestricted marks the super-admin role: it
// grants every permission regardless of the Permissions list.
type Role struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	IsUnrestricted bool         `json:"is_unrestricted"`
	Permissions    []Permission `json:"permissions"`
}

// User is the authenticated profile fetched from the upstream /users/me/
// endpoint. A user has exactly one role.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         *Role     `json:"role"`
	DivisionID   int64     `json:"division_id"`
	DivisionName string    `json:"division_name"`
	IsStudent    bool      `json:"is_student"`
	CreatedAt    time.Time `json:"created_at"`
}

// Codenames for the gateway's route and menu gating. These mirror the
// custom permissions provisioned in the academic backend.
const (
	PermCrudReligions    = "can_crud_religions"
	PermCrudWilayah      = "can_crud_wilayah"
	PermCrudEducations   = "can_crud_educations"
	PermCrudProdis       = "can_crud_prodis"
	PermCrudKonsentrasi  = "can_crud_konsentrasi_utama"
	PermCrudMahasiswa    = "can_crud_mahasiswa"
	PermCrudDosen        = "can_crud_dosen"
	PermManageUsers      = "can_manage_users"
	PermManageRoles      = "can_manage_roles"
	PermManageDivisions  = "can_manage_divisions"
	PermManageProposals  = "can_manage_proposals"
	PermSubmitProposal   = "can_submit_proposal"
	PermViewOwnProposals = "can_view_own_proposals"
)
