package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/dashboard"
	"github.com/iliyamo/mission-dashboard/internal/handler"
	"github.com/iliyamo/mission-dashboard/internal/middleware"
	"github.com/iliyamo/mission-dashboard/internal/model"
	"github.com/iliyamo/mission-dashboard/internal/router"
	"github.com/iliyamo/mission-dashboard/internal/session"
	"github.com/iliyamo/mission-dashboard/internal/view"
)

// fakeAPI is a minimal stand-in for the missions API with one account.
type fakeAPI struct {
	mu       sync.Mutex
	missions []model.Mission
	valid    bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	if r.URL.Path == "/auth/login" {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "Secret1!" {
			reply(http.StatusUnauthorized, map[string]any{"message": "Identifiants invalides"})
			return
		}
		reply(http.StatusCreated, map[string]string{"access_token": "jwt-1"})
		return
	}
	if !f.valid || r.Header.Get("Authorization") != "Bearer jwt-1" {
		reply(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}
	switch {
	case r.URL.Path == "/auth/me":
		reply(http.StatusOK, model.User{ID: 1, Email: "jane@doe.fr", Prenom: "Jane", Nom: "Doe"})
	case r.URL.Path == "/missions/dashboard":
		reply(http.StatusOK, model.DashboardSummary{NumberOfMissions: len(f.missions), LatestMissions: f.missions})
	case r.URL.Path == "/missions/paginated":
		reply(http.StatusOK, model.MissionPage{Missions: f.missions, Total: len(f.missions), Page: 1, Limit: 10, TotalPages: 1})
	case r.URL.Path == "/missions/years":
		reply(http.StatusOK, []int{2025})
	case r.URL.Path == "/missions" && r.Method == http.MethodPost:
		var d model.MissionDraft
		_ = json.NewDecoder(r.Body).Decode(&d)
		m := model.Mission{ID: uint64(len(f.missions) + 1), Title: d.Title, Client: d.Client, TJM: d.TJM, Duree: d.Duree}
		f.missions = append(f.missions, m)
		reply(http.StatusCreated, m)
	default:
		reply(http.StatusNotFound, map[string]any{})
	}
}

type app struct {
	e        *echo.Echo
	api      *fakeAPI
	registry *dashboard.Registry
	cookie   *http.Cookie
}

func newApp(t *testing.T) *app {
	t.Helper()
	fake := &fakeAPI{valid: true, missions: []model.Mission{{ID: 1, Title: "Audit sécurité", Client: "ACME", TJM: 600, Duree: 5}}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api := client.NewAPI(srv.URL, 5*time.Second)
	reg := dashboard.NewRegistry()
	cookie := middleware.CookieConfig{Name: "token", TTL: time.Hour}
	mgr := session.NewManager(session.NewMemoryStore(), time.Hour)

	e := echo.New()
	e.Renderer = view.NewRenderer()
	e.Use(middleware.Session(mgr, cookie))
	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(api, cookie, reg),
		Dashboard: handler.NewDashboardHandler(api, cookie, reg, nil, 10),
		Health:    handler.Health(reg),
	})
	return &app{e: e, api: fake, registry: reg}
}

func (a *app) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != "token" {
			continue
		}
		if ck.MaxAge < 0 {
			a.cookie = nil
		} else {
			a.cookie = ck
		}
	}
	return rec
}

func (a *app) login(t *testing.T) {
	t.Helper()
	rec := a.do(http.MethodPost, "/login", url.Values{"email": {"jane@doe.fr"}, "password": {"Secret1!"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("login: %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if a.cookie == nil {
		t.Fatal("login did not set the session cookie")
	}
}

func TestGate_AnonymousRedirects(t *testing.T) {
	a := newApp(t)
	for _, p := range []string{"/", "/dashboard"} {
		rec := a.do(http.MethodGet, p, nil)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Errorf("%s: got %d %q", p, rec.Code, rec.Header().Get("Location"))
		}
	}
	if rec := a.do(http.MethodGet, "/login", nil); rec.Code != http.StatusOK {
		t.Errorf("/login: got %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz: got %d", rec.Code)
	}
}

func TestLogin_BadPasswordRendersError(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodPost, "/login", url.Values{"email": {"jane@doe.fr"}, "password": {"nope"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Identifiants invalides") {
		t.Fatalf("server message not rendered: %s", rec.Body.String())
	}
	if a.cookie != nil {
		t.Fatal("failed login must not set a cookie")
	}
}

func TestDashboard_LoginShowCreateLogout(t *testing.T) {
	a := newApp(t)
	a.login(t)

	if rec := a.do(http.MethodGet, "/login", nil); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("/login with a session: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec := a.do(http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Audit sécurité") || !strings.Contains(body, "Jane") {
		t.Fatalf("dashboard body missing data: %s", body)
	}

	if rec := a.do(http.MethodPost, "/dashboard/missions/new", url.Values{}); rec.Code != http.StatusSeeOther {
		t.Fatalf("open create: %d", rec.Code)
	}
	form := url.Values{"title": {"Refonte API"}, "client": {"Globex"}, "tjm": {"550,5"}, "duree": {"12"}}
	if rec := a.do(http.MethodPost, "/dashboard/form", form); rec.Code != http.StatusSeeOther {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	a.api.mu.Lock()
	n := len(a.api.missions)
	got := a.api.missions[n-1]
	a.api.mu.Unlock()
	if n != 2 || got.TJM != 550.5 {
		t.Fatalf("mission not created: %+v", got)
	}

	ctrl, ok := a.registry.Lookup(a.cookie.Value)
	if !ok || ctrl.State() != dashboard.Ready {
		t.Fatalf("no ready dashboard for the session before logout")
	}
	if rec := a.do(http.MethodPost, "/logout", url.Values{}); rec.Code != http.StatusSeeOther {
		t.Fatalf("logout: %d", rec.Code)
	}
	if v := ctrl.Snapshot(); v.State != dashboard.Loading || v.Summary != nil || v.Page != nil || v.User != nil {
		t.Fatalf("dashboard not reset by logout: %+v", v)
	}
	if a.cookie != nil {
		t.Fatal("logout must expire the cookie")
	}
	if a.registry.Len() != 0 {
		t.Fatalf("dashboard state kept after logout: %d", a.registry.Len())
	}
}

func TestDashboard_RejectedTokenExpiresSession(t *testing.T) {
	a := newApp(t)
	a.login(t)
	a.api.mu.Lock()
	a.api.valid = false
	a.api.mu.Unlock()

	rec := a.do(http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if a.cookie != nil {
		t.Fatal("cookie should be expired")
	}
}

func TestSubmit_InvalidDraftKeepsForm(t *testing.T) {
	a := newApp(t)
	a.login(t)
	a.do(http.MethodGet, "/dashboard", nil)
	a.do(http.MethodPost, "/dashboard/missions/new", url.Values{})

	rec := a.do(http.MethodPost, "/dashboard/form", url.Values{"title": {"Sans client"}, "tjm": {"500"}, "duree": {"3"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Le client est obligatoire") || !strings.Contains(body, "Sans client") {
		t.Fatalf("error or input missing: %s", body)
	}
}
