package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/port"
	"github.com/arsipak/admin-bff-go/internal/region"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// Deps carries everything the router needs.
type Deps struct {
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Gate      *access.Gate
	Auth      port.AuthAPI
	Regions   *region.Service
	Picker    *region.Manager
	Records   *service.Records
	Proposals *service.Proposals
	Dashboard *service.Dashboard
}

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.MetricsMiddleware(d.Metrics))
	r.Use(observability.TracingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", HandleLogin(d.Gate, d.Logger))
		r.Post("/auth/register", HandleRegister(d.Auth, d.Logger))

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(d.Gate, d.Logger))

			r.Get("/auth/session", HandleSession(d.Gate, d.Logger))
			r.Post("/auth/logout", HandleLogout(d.Gate, d.Logger))
			r.Get("/auth/menu", HandleMenu(d.Gate, d.Logger))
			r.Get("/auth/preferences", HandleGetPreferences(d.Gate, d.Logger))
			r.Put("/auth/preferences", HandlePutPreferences(d.Gate, d.Logger))

			r.Route("/wilayah", func(r chi.Router) {
				r.Get("/", HandleListRegions(d.Regions, d.Logger))
				r.Get("/path/{id}", HandleRegionPath(d.Regions, d.Logger))
			})

			r.Route("/picker", func(r chi.Router) {
				r.Post("/", HandleOpenPicker(d.Picker, d.Logger))
				r.Get("/{id}", HandlePickerView(d.Picker, d.Logger))
				r.Post("/{id}/select", HandlePickerSelect(d.Picker, d.Logger))
				r.Post("/{id}/back", HandlePickerBack(d.Picker, d.Logger))
				r.Post("/{id}/clear", HandlePickerClear(d.Picker, d.Logger))
				r.Post("/{id}/retry", HandlePickerRetry(d.Picker, d.Logger))
				r.Post("/{id}/search", HandlePickerSearch(d.Picker, d.Logger))
				r.Post("/{id}/resume", HandlePickerResume(d.Picker, d.Regions, d.Logger))
				r.Delete("/{id}", HandlePickerClose(d.Picker, d.Logger))
			})

			cols := d.Records.Collections()
			r.Route("/divisions", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermManageDivisions, cols.Divisions, resourceOptions{})
			})
			r.Route("/roles", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermManageRoles, cols.Roles, resourceOptions{})
			})
			r.Route("/users", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermManageUsers, cols.Users, resourceOptions{})
			})
			r.Route("/religions", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudReligions, cols.Religions, resourceOptions{
					ListOverride: HandleReligionLookup(d.Records, d.Logger),
					AfterWrite:   d.Records.InvalidateLookups,
				})
			})
			r.Route("/education-levels", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudEducations, cols.EducationLevels, resourceOptions{
					ListOverride: HandleEducationLookup(d.Records, d.Logger),
					AfterWrite:   d.Records.InvalidateLookups,
				})
			})
			r.Route("/prodis", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudProdis, cols.StudyPrograms, resourceOptions{})
			})
			r.Route("/konsentrasi-utama", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudKonsentrasi, cols.Concentrations, resourceOptions{})
			})
			r.Route("/mahasiswa", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudMahasiswa, cols.Students, resourceOptions{})
			})
			r.Route("/dosen", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermCrudDosen, cols.Lecturers, resourceOptions{})
			})
			r.Route("/bimbingan", func(r chi.Router) {
				mountResource(r, d.Gate, d.Logger, domain.PermManageProposals, cols.Supervisions, resourceOptions{})
			})

			r.Route("/proposals", func(r chi.Router) {
				manage := RequirePermission(d.Gate, d.Logger, domain.PermManageProposals)
				r.With(manage).Get("/", HandleListProposals(d.Proposals, d.Logger))
				r.With(manage).Post("/{id}/approve", HandleProposalDecision(d.Proposals, d.Logger, true))
				r.With(manage).Post("/{id}/reject", HandleProposalDecision(d.Proposals, d.Logger, false))

				r.With(RequirePermission(d.Gate, d.Logger, domain.PermViewOwnProposals)).
					Get("/own", HandleOwnProposals(d.Proposals, d.Logger))
				r.With(RequirePermission(d.Gate, d.Logger, domain.PermSubmitProposal)).
					Post("/", HandleSubmitProposal(d.Proposals, d.Logger))
			})

			r.Post("/upload/{kind}", HandleUpload(d.Gate, d.Records, d.Logger))

			r.Get("/dashboard/stats", HandleDashboardStats(d.Dashboard, d.Logger))
			r.Get("/dashboard/ops", HandleDashboardOps(d.Dashboard, d.Gate, d.Logger))
		})
	})

	return r
}
