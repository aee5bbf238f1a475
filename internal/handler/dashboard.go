package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// HandleDashboardStats returns the landing-page counts.
func HandleDashboardStats(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		stats, err := svc.Stats(r.Context(), session.UpstreamToken)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// HandleDashboardOps returns the gateway's own health counters.
func HandleDashboardOps(svc *service.Dashboard, gate *access.Gate, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := svc.Ops()
		snap.ActiveSessions = int64(gate.SessionCount(r.Context()))
		writeJSON(w, http.StatusOK, snap)
	}
}
