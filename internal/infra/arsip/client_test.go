package arsip

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/infra/resilience"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(
		&http.Client{Timeout: 5 * time.Second},
		baseURL,
		resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond},
		resilience.NewBulkhead(4),
		zap.NewNop(),
		observability.NewMetrics(),
	)
}

func TestDecodeList_BareArray(t *testing.T) {
	raw := []byte(`[{"id":1,"code":"32","name":"Jawa Barat","parent_code":null,"level":1}]`)

	items, total, hasNext, err := decodeList[domain.Region](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Jawa Barat" {
		t.Errorf("unexpected items: %+v", items)
	}
	if total != 1 || hasNext {
		t.Errorf("expected total=1 hasNext=false, got %d %v", total, hasNext)
	}
}

func TestDecodeList_PaginatedEnvelope(t *testing.T) {
	raw := []byte(`{"count":37,"next":"http://x/wilayah/?page=2","results":[{"id":1,"code":"32","name":"Jawa Barat","parent_code":null,"level":1}]}`)

	items, total, hasNext, err := decodeList[domain.Region](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || total != 37 || !hasNext {
		t.Errorf("expected 1 item, total 37, hasNext; got %d %d %v", len(items), total, hasNext)
	}
}

func TestDecodeList_WrappedDataEnvelope(t *testing.T) {
	raw := []byte(`{"data":{"count":2,"results":[{"id":1,"name":"Islam"},{"id":2,"name":"Kristen"}]}}`)

	items, total, hasNext, err := decodeList[domain.Religion](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || total != 2 || hasNext {
		t.Errorf("unexpected result: %d items, total %d, hasNext %v", len(items), total, hasNext)
	}
}

func TestDecodeList_Unrecognizable(t *testing.T) {
	if _, _, _, err := decodeList[domain.Region]([]byte(`{"message":"hi"}`)); err == nil {
		t.Fatal("expected error for unrecognizable shape")
	}
}

func TestNormalizeError_FieldMap(t *testing.T) {
	raw := []byte(`{"nim":["mahasiswa dengan nim ini sudah ada."],"tgl_lahir":["format tanggal salah","wajib diisi"]}`)

	err := normalizeError("POST /mahasiswa/", http.StatusBadRequest, raw)
	var fields *domain.ErrFieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected ErrFieldErrors, got %v", err)
	}
	if got := fields.Fields["nim"][0]; got != "mahasiswa dengan nim ini sudah ada." {
		t.Errorf("field message altered: %q", got)
	}
	if len(fields.Fields["tgl_lahir"]) != 2 {
		t.Errorf("expected both tgl_lahir messages, got %+v", fields.Fields["tgl_lahir"])
	}
}

func TestNormalizeError_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		raw    string
		check  func(error) bool
	}{
		{http.StatusUnauthorized, `{"detail":"invalid token"}`, func(err error) bool {
			var e *domain.ErrUnauthorized
			return errors.As(err, &e)
		}},
		{http.StatusForbidden, `{"detail":"no"}`, func(err error) bool {
			var e *domain.ErrForbidden
			return errors.As(err, &e)
		}},
		{http.StatusNotFound, `{"detail":"not found"}`, func(err error) bool {
			var e *domain.ErrNotFound
			return errors.As(err, &e)
		}},
		{http.StatusBadRequest, `{"error":"judul wajib diisi"}`, func(err error) bool {
			var e *domain.ErrValidation
			return errors.As(err, &e)
		}},
		{http.StatusInternalServerError, `boom`, func(err error) bool {
			var e *domain.ErrUpstream
			return errors.As(err, &e) && e.Status == 500
		}},
	}
	for _, tc := range cases {
		err := normalizeError("GET /x/", tc.status, []byte(tc.raw))
		if !tc.check(err) {
			t.Errorf("status %d mapped to %T: %v", tc.status, err, err)
		}
	}
}

func TestClient_LoginExchangesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "admin" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc123"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	token, err := c.Login(context.Background(), domain.Credentials{Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected abc123, got %s", token)
	}

	var unauth *domain.ErrUnauthorized
	_, err = c.Login(context.Background(), domain.Credentials{Username: "wrong", Password: "pw"})
	if !errors.As(err, &unauth) {
		t.Fatalf("expected unauthorized for bad credentials, got %v", err)
	}
}

func TestClient_ProfileMapsUnrestrictedRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token abc123" {
			t.Errorf("expected token auth header, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"id": 1, "username": "root", "name": "Root",
			"role": {"id": 1, "name": "Super Admin", "permissions": []}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	user, err := c.Profile(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Role == nil || !user.Role.IsUnrestricted {
		t.Errorf("expected unrestricted role, got %+v", user.Role)
	}
}

func TestClient_FetchRegionLevelExhaustsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			_, _ = w.Write([]byte(`{"count":3,"next":"?page=2","results":[
				{"id":1,"code":"32","name":"Jawa Barat","parent_code":null,"level":1},
				{"id":2,"code":"33","name":"Jawa Tengah","parent_code":null,"level":1}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"count":3,"next":null,"results":[
				{"id":3,"code":"34","name":"DI Yogyakarta","parent_code":null,"level":1}]}`))
		default:
			t.Errorf("unexpected page: %s", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	regions, err := c.FetchRegionLevel(context.Background(), "tok", 1, "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(regions) != 3 {
		t.Fatalf("expected all 3 regions across pages, got %d", len(regions))
	}
	if regions[2].Name != "DI Yogyakarta" {
		t.Errorf("pages merged out of order: %+v", regions)
	}
}

func TestClient_ResolveRegionPathRejectsBrokenChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// level 3 missing: not a valid parent chain
		_, _ = w.Write([]byte(`[
			{"id":1,"code":"32","name":"Jawa Barat","parent_code":null,"level":1},
			{"id":4,"code":"32.73.01.1001","name":"Dago","parent_code":"32.73.01","level":4}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var upstream *domain.ErrUpstream
	_, err := c.ResolveRegionPath(context.Background(), "tok", 4)
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error for broken chain, got %v", err)
	}
}

func TestClient_WritesGetASingleAttempt(t *testing.T) {
	var gets, posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
		case http.MethodPost:
			posts++
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"maintenance"}`))
	}))
	defer srv.Close()

	c := NewClient(
		&http.Client{Timeout: 5 * time.Second},
		srv.URL,
		resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond},
		resilience.NewBulkhead(4),
		zap.NewNop(),
		observability.NewMetrics(),
	)
	divisions := NewCollection[domain.Division](c, "/divisions/", "division")
	ctx := context.Background()

	// A timed-out POST may already have landed upstream, so a mutation is
	// never resent.
	if _, err := divisions.Create(ctx, "tok", domain.Division{Name: "Keuangan"}); err == nil {
		t.Fatal("expected create to fail against a 503 upstream")
	}
	if posts != 1 {
		t.Errorf("expected exactly 1 POST attempt, got %d", posts)
	}

	if _, err := divisions.List(ctx, "tok", domain.ListParams{}); err == nil {
		t.Fatal("expected list to fail against a 503 upstream")
	}
	if gets != 3 {
		t.Errorf("expected initial GET plus 2 retries, got %d attempts", gets)
	}
}

func TestClient_UploadPostsToKindEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/dosen/upload/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":"ok","created":1,"updated":0,"errors":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	summary, err := c.UploadRecords(context.Background(), "tok", "dosen", "dosen.csv",
		strings.NewReader("nidn,nama\n001,Budi\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if summary.Created != 1 || summary.Errors == nil {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestCollection_CRUDRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /divisions/":
			_, _ = w.Write([]byte(`{"count":1,"next":null,"results":[{"id":1,"name":"Akademik"}]}`))
		case "POST /divisions/":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":2,"name":"Keuangan"}`))
		case "GET /divisions/2/":
			_, _ = w.Write([]byte(`{"id":2,"name":"Keuangan"}`))
		case "DELETE /divisions/9/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	divisions := NewCollection[domain.Division](c, "/divisions/", "division")
	ctx := context.Background()

	page, err := divisions.List(ctx, "tok", domain.ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Akademik" {
		t.Errorf("unexpected page: %+v", page)
	}

	created, err := divisions.Create(ctx, "tok", domain.Division{Name: "Keuangan"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 2 {
		t.Errorf("expected id 2, got %d", created.ID)
	}

	got, err := divisions.Get(ctx, "tok", "2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Keuangan" {
		t.Errorf("unexpected division: %+v", got)
	}

	var notFound *domain.ErrNotFound
	if err := divisions.Delete(ctx, "tok", "9"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound naming the resource, got %v", err)
	} else if notFound.Resource != "division" || notFound.ID != "9" {
		t.Errorf("not-found not remapped: %+v", notFound)
	}
}
