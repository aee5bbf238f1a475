package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/port"
)

// Gate is the session and permission layer. It owns the login/resume/
// logout lifecycle and is the only component that touches the session
// store. Profiles are cached per session so permission checks do not hit
// the upstream on every request.
type Gate struct {
	auth   port.AuthAPI
	store  Store
	tokens *TokenIssuer
	users  *cache.InMemory[*domain.User]
	logger *zap.Logger
}

// NewGate wires the gate to the upstream auth API and a session store.
func NewGate(auth port.AuthAPI, store Store, tokens *TokenIssuer, users *cache.InMemory[*domain.User], logger *zap.Logger) *Gate {
	return &Gate{auth: auth, store: store, tokens: tokens, users: users, logger: logger}
}

// Login exchanges credentials for a gateway token. The session is only
// stored after both the token exchange and the profile fetch succeed, so
// a half-established session (token without user) cannot exist.
func (g *Gate) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username and password are required"}
	}

	upstreamToken, err := g.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user, err := g.auth.Profile(ctx, upstreamToken)
	if err != nil {
		g.logger.Warn("login: profile fetch failed after token exchange",
			zap.String("username", creds.Username),
			zap.Error(err),
		)
		return nil, err
	}

	session := Session{
		ID:            uuid.NewString(),
		UpstreamToken: upstreamToken,
		Username:      user.Username,
		CreatedAt:     time.Now(),
		Preferences:   domain.Preferences{Theme: "light"},
	}
	if err := g.store.Put(ctx, session); err != nil {
		return nil, err
	}

	token, err := g.tokens.Issue(session.ID, user.Username)
	if err != nil {
		_ = g.store.Delete(ctx, session.ID)
		return nil, err
	}

	g.users.Set(session.ID, user)
	g.logger.Info("login", zap.String("username", user.Username))
	return &domain.AuthResult{Token: token, User: user}, nil
}

// Resume revalidates an existing gateway token by re-fetching the profile.
// An upstream 401 tears the session down so no stale credential lingers;
// transient upstream failures leave the session intact for a retry.
func (g *Gate) Resume(ctx context.Context, token string) (*domain.User, error) {
	session, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := g.auth.Profile(ctx, session.UpstreamToken)
	if err != nil {
		var unauth *domain.ErrUnauthorized
		if errors.As(err, &unauth) {
			g.teardown(ctx, session.ID)
			g.logger.Info("resume: upstream rejected token, session cleared",
				zap.String("username", session.Username),
			)
		}
		return nil, err
	}
	g.users.Set(session.ID, user)
	return user, nil
}

// User returns the profile for a session, from cache when fresh. An
// upstream 401 during a refresh tears the session down, same as Resume.
func (g *Gate) User(ctx context.Context, session *Session) (*domain.User, error) {
	if user, ok := g.users.Get(session.ID); ok {
		return user, nil
	}
	user, err := g.auth.Profile(ctx, session.UpstreamToken)
	if err != nil {
		var unauth *domain.ErrUnauthorized
		if errors.As(err, &unauth) {
			g.teardown(ctx, session.ID)
		}
		return nil, err
	}
	g.users.Set(session.ID, user)
	return user, nil
}

// teardown removes both the session and its cached profile.
func (g *Gate) teardown(ctx context.Context, sessionID string) {
	_ = g.store.Delete(ctx, sessionID)
	g.users.Delete(sessionID)
}

// Logout removes the session. It is synchronous and idempotent: a token
// for an already-removed session succeeds quietly, an invalid token does
// not.
func (g *Gate) Logout(ctx context.Context, token string) error {
	sessionID, err := g.tokens.Parse(token)
	if err != nil {
		return err
	}
	g.teardown(ctx, sessionID)
	g.logger.Info("logout", zap.String("session_id", sessionID))
	return nil
}

// Authenticate resolves a gateway token to its live session.
func (g *Gate) Authenticate(ctx context.Context, token string) (*Session, error) {
	sessionID, err := g.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := g.store.Get(ctx, sessionID)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, &domain.ErrUnauthorized{Message: "session not found"}
		}
		return nil, err
	}
	return session, nil
}

// Preferences returns the session's stored UI preferences.
func (g *Gate) Preferences(ctx context.Context, token string) (*domain.Preferences, error) {
	session, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	prefs := session.Preferences
	return &prefs, nil
}

// SetPreferences replaces the session's UI preferences.
func (g *Gate) SetPreferences(ctx context.Context, token string, prefs domain.Preferences) error {
	session, err := g.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	session.Preferences = prefs
	return g.store.Put(ctx, *session)
}

// SessionCount reports the number of live sessions, for the ops snapshot.
func (g *Gate) SessionCount(ctx context.Context) int {
	n, err := g.store.Len(ctx)
	if err != nil {
		return 0
	}
	return n
}

// HasPermission reports whether the user holds the permission codename.
// A nil user or a user without a role has no permissions; an unrestricted
// role has all of them without consulting the list.
func HasPermission(user *domain.User, codename string) bool {
	if user == nil || user.Role == nil {
		return false
	}
	if user.Role.IsUnrestricted {
		return true
	}
	for _, p := range user.Role.Permissions {
		if p.Codename == codename {
			return true
		}
	}
	return false
}
