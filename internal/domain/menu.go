package domain

// MenuItem is a single navigation entry. Items with an empty Permission
// are visible to every authenticated user.
type MenuItem struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	Permission string `json:"permission,omitempty"`
}

// MenuGroup is a fixed category of menu items ("Master Data", "Management").
// A group with no visible items is omitted from the rendered navigation.
type MenuGroup struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Items []MenuItem `json:"items"`
}
