package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/port"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// resourceOptions tweak a mounted collection. ListOverride swaps the list
// endpoint (cached lookups); AfterWrite runs after any successful mutation
// (cache invalidation).
type resourceOptions struct {
	ListOverride http.HandlerFunc
	AfterWrite   func()
}

// mountResource registers the standard CRUD routes for one collection
// behind a permission.
func mountResource[T any](r chi.Router, gate *access.Gate, logger *zap.Logger, perm string, res port.Resource[T], opts resourceOptions) {
	r.Group(func(r chi.Router) {
		r.Use(RequirePermission(gate, logger, perm))

		list := handleResourceList(res, logger)
		if opts.ListOverride != nil {
			list = opts.ListOverride
		}
		r.Get("/", list)
		r.Post("/", handleResourceCreate(res, logger, opts.AfterWrite))
		r.Get("/{id}", handleResourceGet(res, logger))
		r.Put("/{id}", handleResourceUpdate(res, logger, opts.AfterWrite))
		r.Delete("/{id}", handleResourceDelete(res, logger, opts.AfterWrite))
	})
}

func handleResourceList[T any](res port.Resource[T], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		page, err := res.List(r.Context(), session.UpstreamToken, parseListParams(r))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func handleResourceGet[T any](res port.Resource[T], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		item, err := res.Get(r.Context(), session.UpstreamToken, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func handleResourceCreate[T any](res port.Resource[T], logger *zap.Logger, afterWrite func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeBody(r, &in); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		session := SessionFromContext(r.Context())
		item, err := res.Create(r.Context(), session.UpstreamToken, in)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if afterWrite != nil {
			afterWrite()
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func handleResourceUpdate[T any](res port.Resource[T], logger *zap.Logger, afterWrite func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeBody(r, &in); err != nil {
			handleServiceError(w, logger, err)
			return
		}

		session := SessionFromContext(r.Context())
		item, err := res.Update(r.Context(), session.UpstreamToken, chi.URLParam(r, "id"), in)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if afterWrite != nil {
			afterWrite()
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func handleResourceDelete[T any](res port.Resource[T], logger *zap.Logger, afterWrite func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if err := res.Delete(r.Context(), session.UpstreamToken, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if afterWrite != nil {
			afterWrite()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleReligionLookup serves the cached full religion list.
func HandleReligionLookup(records *service.Records, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		items, err := records.ListReligions(r.Context(), session.UpstreamToken)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Page[domain.Religion]{Items: items, Total: len(items)})
	}
}

// HandleEducationLookup serves the cached full education-level list.
func HandleEducationLookup(records *service.Records, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		items, err := records.ListEducationLevels(r.Context(), session.UpstreamToken)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Page[domain.EducationLevel]{Items: items, Total: len(items)})
	}
}

// uploadPermissions maps an upload kind to the permission it needs.
var uploadPermissions = map[string]string{
	"mahasiswa":         domain.PermCrudMahasiswa,
	"dosen":             domain.PermCrudDosen,
	"prodis":            domain.PermCrudProdis,
	"konsentrasi-utama": domain.PermCrudKonsentrasi,
}

// HandleUpload accepts a bulk CSV/XLSX import for one record kind and
// returns per-row results, never an opaque pass/fail.
func HandleUpload(gate *access.Gate, records *service.Records, logger *zap.Logger) http.HandlerFunc {
	const maxUploadBytes = 10 << 20

	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		perm, ok := uploadPermissions[kind]
		if !ok {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "kind", Message: "unknown upload kind: " + kind})
			return
		}

		session := SessionFromContext(r.Context())
		user, err := gate.User(r.Context(), session)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		if !access.HasPermission(user, perm) {
			writeError(w, http.StatusForbidden, "missing permission: "+perm)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "file", Message: "invalid multipart body"})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			handleServiceError(w, logger, &domain.ErrValidation{Field: "file", Message: "file field is required"})
			return
		}
		defer file.Close()

		summary, err := records.Upload(r.Context(), session.UpstreamToken, kind, header.Filename, file)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
