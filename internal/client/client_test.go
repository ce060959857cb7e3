package client

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/mission-dashboard/internal/model"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SetToken(_ context.Context, t string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
	return nil
}

func (m *memTokens) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func newTestAPI(t *testing.T, h http.HandlerFunc) (*API, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewAPI(srv.URL+"/", 5*time.Second), &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresToken(t *testing.T) {
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.fr" || body["password"] != "Secret1!" {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusCreated, map[string]string{"access_token": "tok-1"})
	})
	store := &memTokens{}
	tok, err := NewAuthClient(api, store).Login(context.Background(), " a@b.fr ", "Secret1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "tok-1" || store.token != "tok-1" {
		t.Fatalf("token not stored: returned %q stored %q", tok, store.token)
	}
}

func TestLogin_ServerMessageAndFallback(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		want   string
	}{
		{"string", http.StatusUnauthorized, map[string]any{"message": "Identifiants invalides"}, "Identifiants invalides"},
		{"list", http.StatusBadRequest, map[string]any{"message": []string{"email must be an email"}}, "email must be an email"},
		{"rejected", http.StatusUnauthorized, map[string]any{}, msgBadCredentials},
		{"server error", http.StatusInternalServerError, map[string]any{}, msgLoginFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			store := &memTokens{}
			_, err := NewAuthClient(api, store).Login(context.Background(), "a@b.fr", "x")
			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthenticationError, got %T %v", err, err)
			}
			if authErr.Message != tc.want {
				t.Fatalf("message = %q, want %q", authErr.Message, tc.want)
			}
			if store.token != "" {
				t.Fatalf("failed login must not store a token")
			}
		})
	}
}

func TestRegister_WeakPasswordSendsNothing(t *testing.T) {
	api, hits := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	})
	c := NewAuthClient(api, &memTokens{})
	_, err := c.Register(context.Background(), RegisterInput{Email: "a@b.fr", Password: "password", Nom: "Doe", Prenom: "Jane"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("no request expected for a weak password")
	}
}

func TestRegister_Conflict(t *testing.T) {
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Email déjà utilisé"})
	})
	_, err := NewAuthClient(api, &memTokens{}).Register(context.Background(),
		RegisterInput{Email: "a@b.fr", Password: "Secret1!", Nom: "Doe", Prenom: "Jane"})
	var rErr *RegistrationError
	if !errors.As(err, &rErr) || rErr.Message != "Email déjà utilisé" {
		t.Fatalf("expected RegistrationError with server message, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	ok := []string{"Secret1!", "Abcdefg1@", "zZ9$zZ9$"}
	bad := []string{"", "Sec1!", "secret1!", "SECRET1!", "Secret!!", "Secret12", "Secret1!#", "Sécret1!"}
	for _, pw := range ok {
		if err := CheckPassword(pw); err != nil {
			t.Errorf("%q rejected: %v", pw, err)
		}
	}
	for _, pw := range bad {
		if err := CheckPassword(pw); err == nil {
			t.Errorf("%q accepted", pw)
		}
	}
}

func TestCurrentUser_RejectedTokenIsCleared(t *testing.T) {
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stale" {
			t.Errorf("missing bearer header")
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	store := &memTokens{token: "stale"}
	_, err := NewAuthClient(api, store).CurrentUser(context.Background())
	if !IsAuthFailure(err) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if store.token != "" {
		t.Fatalf("rejected token must be cleared")
	}
}

func TestMissions_NoTokenNoRequest(t *testing.T) {
	api, hits := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	c := NewMissionClient(api, &memTokens{})
	ctx := context.Background()

	calls := map[string]func() error{
		"dashboard": func() error { _, err := c.Dashboard(ctx); return err },
		"list":      func() error { _, err := c.ListPaginated(ctx, ListQuery{}); return err },
		"create":    func() error { _, err := c.Create(ctx, model.MissionDraft{}); return err },
		"update":    func() error { _, err := c.Update(ctx, 1, model.MissionPatch{}); return err },
		"delete":    func() error { return c.Delete(ctx, 1) },
		"years":     func() error { _, err := c.Years(ctx); return err },
	}
	for name, fn := range calls {
		if err := fn(); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestListPaginated_QueryParams(t *testing.T) {
	var got []string
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, model.MissionPage{Page: 1, Limit: 10})
	})
	c := NewMissionClient(api, &memTokens{token: "t"})
	ctx := context.Background()
	year := 2024

	if _, err := c.ListPaginated(ctx, ListQuery{Page: 0, Limit: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListPaginated(ctx, ListQuery{Page: 3, Limit: 5, Year: &year}); err != nil {
		t.Fatal(err)
	}
	want := []string{"limit=10&page=1", "limit=5&page=3&year=2024"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMissions_StatusTranslation(t *testing.T) {
	cases := []struct {
		status    int
		body      any
		check     func(error) bool
		wantClear bool
	}{
		{http.StatusUnauthorized, map[string]any{}, func(err error) bool { var e *AuthenticationError; return errors.As(err, &e) }, true},
		{http.StatusNotFound, map[string]any{}, func(err error) bool {
			var e *NotFoundError
			return errors.As(err, &e) && e.ID == 7 && e.Message == msgMissionNotFound
		}, false},
		{http.StatusBadRequest, map[string]any{"message": []string{"tjm must be positive"}}, func(err error) bool {
			var e *ValidationError
			return errors.As(err, &e) && e.Message == "tjm must be positive"
		}, false},
		{http.StatusInternalServerError, map[string]any{}, func(err error) bool {
			var e *APIError
			return errors.As(err, &e) && e.Status == 500 && e.Message == msgDeleteFailed
		}, false},
	}
	for _, tc := range cases {
		api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, tc.body)
		})
		store := &memTokens{token: "t"}
		err := NewMissionClient(api, store).Delete(context.Background(), 7)
		if !tc.check(err) {
			t.Errorf("status %d: unexpected error %T %v", tc.status, err, err)
		}
		if cleared := store.token == ""; cleared != tc.wantClear {
			t.Errorf("status %d: token cleared = %v", tc.status, cleared)
		}
	}
}

func TestCreate_InvalidDraftSendsNothing(t *testing.T) {
	api, hits := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, model.Mission{ID: 1})
	})
	c := NewMissionClient(api, &memTokens{token: "t"})
	drafts := []model.MissionDraft{
		{Title: " ", Client: "ACME", TJM: 500, Duree: 10},
		{Title: "Audit", Client: "ACME", TJM: 0, Duree: 10},
		{Title: "Audit", Client: "ACME", TJM: 500, Duree: 10, StartDate: "12/01/2024"},
		{Title: "Audit", Client: "ACME", TJM: math.NaN(), Duree: 10},
		{Title: "Audit", Client: "ACME", TJM: math.Inf(1), Duree: 10},
		{Title: "Audit", Client: "ACME", TJM: 500, Duree: math.Inf(1)},
	}
	for _, d := range drafts {
		var vErr *ValidationError
		if _, err := c.Create(context.Background(), d); !errors.As(err, &vErr) {
			t.Errorf("draft %+v: expected ValidationError, got %v", d, err)
		}
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("invalid drafts must not reach the API")
	}
}

func TestUpdate_SendsOnlyPatchedFields(t *testing.T) {
	var body map[string]any
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/missions/42" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, model.Mission{ID: 42, Title: "Audit", TJM: 650})
	})
	tjm := 650.0
	m, err := NewMissionClient(api, &memTokens{token: "t"}).Update(context.Background(), 42, model.MissionPatch{TJM: &tjm})
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 42 || len(body) != 1 || body["tjm"] != 650.0 {
		t.Fatalf("unexpected patch body %v", body)
	}
}

func TestTransportFailure(t *testing.T) {
	api := NewAPI("http://127.0.0.1:1", time.Second)
	_, err := NewMissionClient(api, &memTokens{token: "t"}).Years(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 0 || apiErr.Message != msgYearsFailed {
		t.Fatalf("expected transport APIError, got %v", err)
	}
	if Message(err) != msgYearsFailed {
		t.Fatalf("Message() = %q", Message(err))
	}
}

func TestUpdate_NonFinitePatchSendsNothing(t *testing.T) {
	api, hits := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.Mission{ID: 1})
	})
	c := NewMissionClient(api, &memTokens{token: "t"})
	nan, inf := math.NaN(), math.Inf(1)
	for _, p := range []model.MissionPatch{{TJM: &nan}, {Duree: &inf}} {
		var vErr *ValidationError
		if _, err := c.Update(context.Background(), 1, p); !errors.As(err, &vErr) {
			t.Errorf("patch %+v: expected ValidationError, got %v", p, err)
		}
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("non-finite amounts must not reach the API")
	}
}
