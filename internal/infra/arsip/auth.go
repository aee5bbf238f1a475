package arsip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// arsipRole maps the upstream role payload.
type arsipRole struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Permissions []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Codename string `json:"codename"`
	} `json:"permissions"`
}

// arsipUser maps the upstream /users/me/ payload.
type arsipUser struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     *arsipRole `json:"role"`
	Division *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"division"`
	IsStudent bool   `json:"is_mahasiswa"`
	CreatedAt string `json:"date_joined"`
}

// toDomain converts the upstream user payload. The super-admin name
// comparison happens once, here; everything downstream checks
// Role.IsUnrestricted.
func (u *arsipUser) toDomain() *domain.User {
	user := &domain.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		IsStudent: u.IsStudent,
	}
	if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
		user.CreatedAt = t
	}
	if u.Division != nil {
		user.DivisionID = u.Division.ID
		user.DivisionName = u.Division.Name
	}
	if u.Role != nil {
		role := &domain.Role{
			ID:             u.Role.ID,
			Name:           u.Role.Name,
			Description:    u.Role.Description,
			IsUnrestricted: u.Role.Name == domain.SuperAdminRoleName,
			Permissions:    make([]domain.Permission, 0, len(u.Role.Permissions)),
		}
		for _, p := range u.Role.Permissions {
			role.Permissions = append(role.Permissions, domain.Permission{
				ID:       p.ID,
				Name:     p.Name,
				Codename: p.Codename,
			})
		}
		user.Role = role
	}
	return user
}

// Login exchanges credentials for an upstream token. Implements port.AuthAPI.
// Any 400-class rejection is reported as unauthorized; the backend does not
// distinguish unknown users from wrong passwords and neither do we.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.username", creds.Username))

	var token string
	err := c.executeWrite(ctx, "auth", func() error {
		raw, err := c.do(ctx, http.MethodPost, "/auth/login/", "", creds)
		if err != nil {
			return err
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("decode login response: %w", err)
		}
		if resp.Token == "" {
			return &domain.ErrUpstream{Op: "POST /auth/login/", Status: http.StatusOK, Message: "empty token in response"}
		}
		token = resp.Token
		return nil
	})
	if err != nil {
		var fields *domain.ErrFieldErrors
		var validation *domain.ErrValidation
		if errors.As(err, &fields) || errors.As(err, &validation) {
			return "", &domain.ErrUnauthorized{Message: "invalid username or password"}
		}
		return "", err
	}
	return token, nil
}

// Register creates a new upstream account.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.username", in.Username))

	var user *domain.User
	err := c.executeWrite(ctx, "auth", func() error {
		raw, err := c.do(ctx, http.MethodPost, "/auth/register/", "", in)
		if err != nil {
			return err
		}
		var payload arsipUser
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode register response: %w", err)
		}
		user = payload.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Profile loads the user owning the given upstream token.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Profile")
	defer span.End()

	var user *domain.User
	err := c.execute(ctx, "auth", func() error {
		raw, err := c.do(ctx, http.MethodGet, "/users/me/", token, nil)
		if err != nil {
			return err
		}
		var payload arsipUser
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode profile response: %w", err)
		}
		user = payload.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
