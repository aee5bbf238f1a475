package domain

// Administrative hierarchy levels (wilayah).
const (
	LevelProvince = 1
	LevelRegency  = 2
	LevelDistrict = 3
	LevelVillage  = 4
)

// LevelLabel returns the Indonesian display label for a hierarchy level.
func LevelLabel(level int) string {
	switch level {
	case LevelProvince:
		return "Provinsi"
	case LevelRegency:
		return "Kabupaten/Kota"
	case LevelDistrict:
		return "Kecamatan"
	case LevelVillage:
		return "Desa/Kelurahan"
	}
	return "Wilayah"
}

// Region is a node in the 4-level administrative hierarchy.
// Level-1 nodes have a nil ParentCode; every deeper node points at a node
// one level up. Codes are unique across the whole hierarchy.
type Region struct {
	ID         int64   `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	ParentCode *string `json:"parent_code"`
	Level      int     `json:"level"`
}

// RegionPath is an ordered province→village chain of 1..4 regions.
// A committed picker value is always either nil or a complete 4-level path;
// shorter paths exist only as in-progress breadcrumb state.
type RegionPath []Region

// Valid reports whether the path is a well-formed parent chain starting at
// level 1, with each node a child of the previous one.
func (p RegionPath) Valid() bool {
	if len(p) == 0 || len(p) > LevelVillage {
		return false
	}
	if p[0].Level != LevelProvince || p[0].ParentCode != nil {
		return false
	}
	for i := 1; i < len(p); i++ {
		if p[i].Level != p[i-1].Level+1 {
			return false
		}
		if p[i].ParentCode == nil || *p[i].ParentCode != p[i-1].Code {
			return false
		}
	}
	return true
}

// Complete reports whether the path reaches the village level.
func (p RegionPath) Complete() bool {
	return len(p) == LevelVillage && p.Valid()
}

// Terminal returns the deepest region of the path, or nil when empty.
func (p RegionPath) Terminal() *Region {
	if len(p) == 0 {
		return nil
	}
	return &p[len(p)-1]
}

// DisplayName joins the node names for breadcrumb display,
// e.g. "Jawa Barat, Kota Bandung, Coblong, Dago".
func (p RegionPath) DisplayName() string {
	s := ""
	for i, r := range p {
		if i > 0 {
			s += ", "
		}
		s += r.Name
	}
	return s
}
