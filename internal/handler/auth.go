package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/port"
)

// HandleLogin exchanges credentials for a gateway token plus the profile.
func HandleLogin(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		if err := decodeBody(r, &creds); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		result, err := gate.Login(r.Context(), creds)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleRegister creates a new upstream account. The caller still has to
// log in afterwards.
func HandleRegister(auth port.AuthAPI, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.RegisterInput
		if err := decodeBody(r, &in); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		user, err := auth.Register(r.Context(), in)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleSession revalidates the caller's session and returns the fresh
// profile. A rejected upstream token answers 401 and the session is gone;
// the client must drop its token and return to login.
func HandleSession(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := gate.Resume(r.Context(), gatewayTokenFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// HandleLogout removes the session synchronously; once this returns the
// token is dead.
func HandleLogout(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := gate.Logout(r.Context(), gatewayTokenFromContext(r.Context())); err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// HandleMenu returns the navigation filtered to the caller's permissions.
func HandleMenu(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := gate.User(r.Context(), SessionFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": access.Menu(user)})
	}
}

// HandleGetPreferences returns the session's UI preferences.
func HandleGetPreferences(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := gate.Preferences(r.Context(), gatewayTokenFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

// HandlePutPreferences replaces the session's UI preferences.
func HandlePutPreferences(gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs domain.Preferences
		if err := decodeBody(r, &prefs); err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if err := gate.SetPreferences(r.Context(), gatewayTokenFromContext(r.Context()), prefs); err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}
