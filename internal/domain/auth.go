package domain

// Credentials are the login inputs forwarded to the upstream token endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput creates a new upstream account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResult is what a successful login yields: a gateway-issued bearer
// token plus the fully loaded profile. Both are set or neither is.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Preferences are per-session UI settings kept by the gateway, not the
// upstream backend.
type Preferences struct {
	Theme            string `json:"theme"`
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
}
