package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/region"
)

// Picker endpoints drive a server-held cascading region selector. Fetch
// failures do not fail the request: they surface inside the view with an
// inline error the client can retry, matching how the widget renders.

// HandleOpenPicker creates a picker session and loads the provinces.
func HandleOpenPicker(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		id, view, err := mgr.Open(r.Context(), session.UpstreamToken)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "view": view})
	}
}

// HandlePickerView returns the current picker state.
func HandlePickerView(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sel.Snapshot())
	}
}

// HandlePickerSelect picks one of the visible options.
func HandlePickerSelect(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		var body struct {
			RegionID int64 `json:"region_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		respondPicker(w, logger, sel, sel.Select(r.Context(), body.RegionID))
	}
}

// HandlePickerBack steps one level up.
func HandlePickerBack(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		respondPicker(w, logger, sel, sel.Back(r.Context()))
	}
}

// HandlePickerClear resets the picker to the initial state.
func HandlePickerClear(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		respondPicker(w, logger, sel, sel.Clear(r.Context()))
	}
}

// HandlePickerRetry refetches the current level after a load failure.
func HandlePickerRetry(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		respondPicker(w, logger, sel, sel.Retry(r.Context()))
	}
}

// HandlePickerSearch sets the local substring filter.
func HandlePickerSearch(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		var body struct {
			Query string `json:"query"`
		}
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		sel.Search(body.Query)
		writeJSON(w, http.StatusOK, sel.Snapshot())
	}
}

// HandlePickerResume seeds the picker from a village id, e.g. when
// editing a record that already has an address.
func HandlePickerResume(mgr *region.Manager, svc *region.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}

		var body struct {
			RegionID int64 `json:"region_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		session := SessionFromContext(r.Context())
		path, err := svc.Path(r.Context(), session.UpstreamToken, body.RegionID)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if !path.Complete() {
			handleServiceError(w, logger, &domain.ErrValidation{
				Field: "region_id", Message: "region is not a village, cannot resume",
			})
			return
		}

		respondPicker(w, logger, sel, sel.Resume(r.Context(), path))
	}
}

// HandlePickerClose discards a picker session.
func HandlePickerClose(mgr *region.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.Close(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// respondPicker distinguishes caller mistakes (bad option, invalid state)
// from fetch failures. The former answer with an error status; the latter
// are part of the picker view and answer 200 so the client can render the
// inline retry.
func respondPicker(w http.ResponseWriter, logger *zap.Logger, sel *region.Selector, err error) {
	if err != nil {
		var validation *domain.ErrValidation
		var notFound *domain.ErrNotFound
		if errors.As(err, &validation) || errors.As(err, &notFound) {
			handleServiceError(w, logger, err)
			return
		}
		logger.Warn("picker: level fetch failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, sel.Snapshot())
}
