package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/handler"
	"github.com/arsipak/admin-bff-go/internal/infra/arsip"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/infra/resilience"
	"github.com/arsipak/admin-bff-go/internal/region"
	"github.com/arsipak/admin-bff-go/internal/service"
)

// fakeArsip emulates the upstream academic backend closely enough for the
// gateway: token auth, the wilayah hierarchy, one CRUD collection and the
// proposal workflow.
func fakeArsip(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		switch creds.Username + ":" + creds.Password {
		case "admin:secret", "staff:secret":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "up-" + creds.Username})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
		}
	})

	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Token up-admin":
			_, _ = w.Write([]byte(`{"id":1,"username":"admin","name":"Admin",
				"role":{"id":1,"name":"Super Admin","permissions":[]}}`))
		case "Token up-staff":
			_, _ = w.Write([]byte(`{"id":2,"username":"staff","name":"Staff",
				"role":{"id":2,"name":"Akademik","permissions":[
					{"id":1,"name":"x","codename":"can_crud_dosen"},
					{"id":2,"name":"y","codename":"can_view_own_proposals"}]}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid token."}`))
		}
	})

	mux.HandleFunc("GET /wilayah/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("level") + ":" + q.Get("parent_code") {
		case "1:":
			_, _ = w.Write([]byte(`[{"id":1,"code":"32","name":"Jawa Barat","parent_code":null,"level":1}]`))
		case "2:32":
			_, _ = w.Write([]byte(`[{"id":2,"code":"32.73","name":"Kota Bandung","parent_code":"32","level":2}]`))
		case "3:32.73":
			_, _ = w.Write([]byte(`[{"id":3,"code":"32.73.01","name":"Coblong","parent_code":"32.73","level":3}]`))
		case "4:32.73.01":
			_, _ = w.Write([]byte(`[{"id":4,"code":"32.73.01.1001","name":"Dago","parent_code":"32.73.01","level":4}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	mux.HandleFunc("GET /dosen/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"next":null,"results":[{"nidn":"001","kode_dosen":"AB","nama_dosen":"Budi","jk":"L","prodi":1,"status_aktif":"aktif"}]}`))
	})

	mux.HandleFunc("GET /users/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"next":null,"results":[]}`))
	})

	mux.HandleFunc("POST /mahasiswa/upload/", func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"file wajib diisi"}`))
			return
		}
		defer file.Close()
		_, _ = io.Copy(io.Discard, file)
		_, _ = w.Write([]byte(`{"message":"import selesai","created":2,"updated":1,"errors":["baris 4: nim kosong"]}`))
	})

	mux.HandleFunc("POST /proposals/{id}/reject/", func(w http.ResponseWriter, r *http.Request) {
		var body domain.ProposalDecision
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.TrimSpace(body.Note) == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"catatan wajib diisi saat menolak proposal"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"judul":"X","status":"rejected","catatan":"` + body.Note + `"}`))
	})

	return httptest.NewServer(mux)
}

// newTestRouter wires the full stack against the fake upstream.
func newTestRouter(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond}
	client := arsip.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		upstreamURL,
		resilience.NewCircuitBreaker("test"),
		cfg,
		resilience.NewBulkhead(4),
		logger,
		metrics,
	)

	gate := access.NewGate(
		client,
		access.NewMemoryStore(),
		access.NewTokenIssuer("test-secret", time.Hour),
		cache.New[*domain.User](time.Minute),
		logger,
	)

	regionSvc := region.NewService(client,
		cache.New[[]domain.Region](time.Minute),
		cache.New[domain.RegionPath](time.Minute),
		logger, metrics)
	pickerMgr := region.NewManager(regionSvc, cache.New[*region.Selector](time.Minute), logger, metrics)

	cols := service.Collections{
		Divisions:       arsip.NewCollection[domain.Division](client, "/divisions/", "division"),
		Roles:           arsip.NewCollection[domain.Role](client, "/roles/", "role"),
		Users:           arsip.NewCollection[domain.User](client, "/users/", "user"),
		Religions:       arsip.NewCollection[domain.Religion](client, "/religions/", "religion"),
		EducationLevels: arsip.NewCollection[domain.EducationLevel](client, "/education-levels/", "education level"),
		StudyPrograms:   arsip.NewCollection[domain.StudyProgram](client, "/prodis/", "study program"),
		Concentrations:  arsip.NewCollection[domain.Concentration](client, "/konsentrasi-utama/", "concentration"),
		Students:        arsip.NewCollection[domain.Student](client, "/mahasiswa/", "student"),
		Lecturers:       arsip.NewCollection[domain.Lecturer](client, "/dosen/", "lecturer"),
		Supervisions:    arsip.NewCollection[domain.Supervision](client, "/bimbingan/", "supervision"),
	}
	recordsSvc := service.NewRecords(cols, client,
		cache.New[[]domain.Religion](time.Minute),
		cache.New[[]domain.EducationLevel](time.Minute),
		logger, metrics)

	return handler.NewRouter(handler.Deps{
		Logger:    logger,
		Metrics:   metrics,
		Gate:      gate,
		Auth:      client,
		Regions:   regionSvc,
		Picker:    pickerMgr,
		Records:   recordsSvc,
		Proposals: service.NewProposals(client, logger),
		Dashboard: service.NewDashboard(cols, client, metrics, logger),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "",
		domain.Credentials{Username: username, Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return result.Token
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	rec := doJSON(t, router, http.MethodGet, "/v1/wilayah/?level=1", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/wilayah/?level=1", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with invalid token, got %d", rec.Code)
	}
}

func TestRouter_LoginAndListRegions(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	token := login(t, router, "admin")
	rec := doJSON(t, router, http.MethodGet, "/v1/wilayah/?level=1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page domain.Page[domain.Region]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Jawa Barat" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestRouter_BadCredentialsAnswer401(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "",
		domain.Credentials{Username: "admin", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad credentials, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_PermissionGating(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	staff := login(t, router, "staff")

	// staff holds can_crud_dosen but not can_manage_users
	if rec := doJSON(t, router, http.MethodGet, "/v1/dosen/", staff, nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for granted permission, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodGet, "/v1/users/", staff, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for missing permission, got %d", rec.Code)
	}

	// the unrestricted role passes every gate
	admin := login(t, router, "admin")
	if rec := doJSON(t, router, http.MethodGet, "/v1/users/", admin, nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for unrestricted role, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_MenuIsFiltered(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	staff := login(t, router, "staff")
	rec := doJSON(t, router, http.MethodGet, "/v1/auth/menu", staff, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("menu: %d", rec.Code)
	}

	var resp struct {
		Groups []domain.MenuGroup `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, g := range resp.Groups {
		for _, item := range g.Items {
			switch item.ID {
			case "dosen", "proposal-status", "settings":
			default:
				t.Errorf("item %q should be hidden from staff", item.ID)
			}
		}
	}
}

func TestRouter_PickerDrillDown(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	token := login(t, router, "admin")

	rec := doJSON(t, router, http.MethodPost, "/v1/picker/", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open picker: %d: %s", rec.Code, rec.Body.String())
	}
	var opened struct {
		ID   string      `json:"id"`
		View region.View `json:"view"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(opened.View.Options) != 1 || opened.View.Options[0].Name != "Jawa Barat" {
		t.Fatalf("expected province options, got %+v", opened.View.Options)
	}

	var view region.View
	for _, id := range []int64{1, 2, 3, 4} {
		rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/picker/%s/select", opened.ID), token,
			map[string]int64{"region_id": id})
		if rec.Code != http.StatusOK {
			t.Fatalf("select %d: %d: %s", id, rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode view: %v", err)
		}
	}

	if view.Committed == nil || !view.Committed.Complete() {
		t.Fatalf("expected complete committed path, got %+v", view.Committed)
	}
	if view.Committed.DisplayName() != "Jawa Barat, Kota Bandung, Coblong, Dago" {
		t.Errorf("unexpected path: %s", view.Committed.DisplayName())
	}
}

func TestRouter_RejectProposalRequiresNote(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	admin := login(t, router, "admin")

	rec := doJSON(t, router, http.MethodPost, "/v1/proposals/7/reject", admin,
		domain.ProposalDecision{Note: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty note, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/proposals/7/reject", admin,
		domain.ProposalDecision{Note: "judul terlalu luas"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with note, got %d: %s", rec.Code, rec.Body.String())
	}
	var p domain.Proposal
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != domain.ProposalRejected || p.Note != "judul terlalu luas" {
		t.Errorf("unexpected proposal: %+v", p)
	}
}

func doUpload(t *testing.T, router http.Handler, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BulkUploadRoundTrip(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	admin := login(t, router, "admin")
	csv := []byte("nim,nama\n24001,Siti\n24002,Andi\n")

	rec := doUpload(t, router, "/v1/upload/mahasiswa", admin, "mahasiswa.csv", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.UploadSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Created != 2 || summary.Updated != 1 || len(summary.Errors) != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	if rec := doUpload(t, router, "/v1/upload/arsip", admin, "x.csv", csv); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rec.Code)
	}
}

func TestRouter_UploadKindsArePermissionGated(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	// staff holds can_crud_dosen but neither can_crud_prodis nor
	// can_crud_konsentrasi_utama
	staff := login(t, router, "staff")
	csv := []byte("kode,nama\nIF,Informatika\n")

	for _, kind := range []string{"prodis", "konsentrasi-utama"} {
		if rec := doUpload(t, router, "/v1/upload/"+kind, staff, "data.csv", csv); rec.Code != http.StatusForbidden {
			t.Errorf("upload %s: expected 403 for missing permission, got %d", kind, rec.Code)
		}
	}
}

func TestRouter_LogoutKillsToken(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	token := login(t, router, "admin")
	if rec := doJSON(t, router, http.MethodPost, "/v1/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/v1/wilayah/?level=1", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestRouter_SessionResumeAfterUpstreamRevocation(t *testing.T) {
	upstream := fakeArsip(t)
	router := newTestRouter(t, upstream.URL)

	token := login(t, router, "admin")
	if rec := doJSON(t, router, http.MethodGet, "/v1/auth/session", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("session resume: %d", rec.Code)
	}

	// Upstream goes away entirely: the profile fetch fails as a transport
	// error and the session survives for a later retry.
	upstream.Close()
	if rec := doJSON(t, router, http.MethodGet, "/v1/auth/session", token, nil); rec.Code == http.StatusUnauthorized {
		t.Errorf("transient upstream failure must not answer 401, got %d", rec.Code)
	}
}

func TestRouter_Healthz(t *testing.T) {
	upstream := fakeArsip(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: %d", rec.Code)
	}
}
