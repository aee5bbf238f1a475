package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/region"
)

// HandleListRegions lists every child of one hierarchy level, fetched to
// exhaustion server-side so clients never page through wilayah themselves.
func HandleListRegions(svc *region.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, err := strconv.Atoi(r.URL.Query().Get("level"))
		if err != nil {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "level", Message: "level must be an integer"})
			return
		}
		parentCode := r.URL.Query().Get("parent_code")

		session := SessionFromContext(r.Context())
		regions, err := svc.Children(r.Context(), session.UpstreamToken, level, parentCode)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Page[domain.Region]{Items: regions, Total: len(regions)})
	}
}

// HandleRegionPath resolves the full province→village chain for a region id.
func HandleRegionPath(svc *region.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "id", Message: "id must be an integer"})
			return
		}

		session := SessionFromContext(r.Context())
		path, err := svc.Path(r.Context(), session.UpstreamToken, id)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"path":         path,
			"display_name": path.DisplayName(),
		})
	}
}
