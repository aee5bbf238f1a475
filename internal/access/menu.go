package access

import "github.com/arsipak/admin-bff-go/internal/domain"

// menuTree is the full navigation, before permission filtering. Order
// matters: it matches the rendered sidebar.
var menuTree = []domain.MenuGroup{
	{
		ID:    "master-data",
		Label: "Master Data",
		Items: []domain.MenuItem{
			{ID: "bimbingan", Label: "Bimbingan", Icon: "users", Permission: domain.PermManageProposals},
			{ID: "manage-proposals", Label: "Kelola Proposal", Icon: "clipboard-check", Permission: domain.PermManageProposals},
			{ID: "proposal-status", Label: "Status Proposal", Icon: "clipboard-list", Permission: domain.PermViewOwnProposals},
			{ID: "submit-proposal", Label: "Ajukan Proposal", Icon: "file-plus", Permission: domain.PermSubmitProposal},
			{ID: "konsentrasi-utama", Label: "Konsentrasi Utama", Icon: "target", Permission: domain.PermCrudKonsentrasi},
			{ID: "dosen", Label: "Dosen", Icon: "graduation-cap", Permission: domain.PermCrudDosen},
			{ID: "mahasiswa", Label: "Mahasiswa", Icon: "user", Permission: domain.PermCrudMahasiswa},
			{ID: "wilayah", Label: "Wilayah", Icon: "map", Permission: domain.PermCrudWilayah},
			{ID: "prodis", Label: "Program Studi", Icon: "book-open", Permission: domain.PermCrudProdis},
			{ID: "educations", Label: "Jenjang Pendidikan", Icon: "award", Permission: domain.PermCrudEducations},
			{ID: "religions", Label: "Agama", Icon: "heart", Permission: domain.PermCrudReligions},
		},
	},
	{
		ID:    "management",
		Label: "Management",
		Items: []domain.MenuItem{
			{ID: "divisions", Label: "Divisi", Icon: "building", Permission: domain.PermManageDivisions},
			{ID: "roles", Label: "Role", Icon: "shield", Permission: domain.PermManageRoles},
			{ID: "users", Label: "User", Icon: "user-cog", Permission: domain.PermManageUsers},
			{ID: "settings", Label: "Pengaturan", Icon: "settings"},
		},
	},
}

// Menu returns the navigation visible to the user: items the user lacks
// permission for are dropped, and a group left with no items disappears
// entirely rather than rendering an empty header.
func Menu(user *domain.User) []domain.MenuGroup {
	groups := make([]domain.MenuGroup, 0, len(menuTree))
	for _, g := range menuTree {
		items := make([]domain.MenuItem, 0, len(g.Items))
		for _, item := range g.Items {
			if item.Permission == "" || HasPermission(user, item.Permission) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		groups = append(groups, domain.MenuGroup{ID: g.ID, Label: g.Label, Items: items})
	}
	return groups
}
