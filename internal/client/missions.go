package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iliyamo/mission-dashboard/internal/model"
)

const (
	msgDashboardFailed = "Erreur lors de la récupération des données du dashboard"
	msgListFailed      = "Erreur lors de la récupération des missions"
	msgCreateFailed    = "Erreur lors de la création de la mission"
	msgUpdateFailed    = "Erreur lors de la mise à jour de la mission"
	msgDeleteFailed    = "Erreur lors de la suppression de la mission"
	msgYearsFailed     = "Erreur lors de la récupération des années"
	msgMissionNotFound = "Mission introuvable"
)

// Default paging parameters for ListPaginated.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// MissionClient issues the authenticated mission requests.  Every call
// fails with ErrUnauthenticated, without touching the network, when the
// store holds no token.
type MissionClient struct {
	api    *API
	tokens TokenStore
}

func NewMissionClient(api *API, tokens TokenStore) *MissionClient {
	return &MissionClient{api: api, tokens: tokens}
}

// ListQuery selects one page of missions.  A nil Year means no filter.
type ListQuery struct {
	Page  int
	Limit int
	Year  *int
}

func (q ListQuery) values() url.Values {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Year != nil {
		v.Set("year", strconv.Itoa(*q.Year))
	}
	return v
}

// Dashboard fetches the aggregate summary.
func (c *MissionClient) Dashboard(ctx context.Context) (*model.DashboardSummary, error) {
	var out model.DashboardSummary
	if err := c.call(ctx, request{method: http.MethodGet, path: "/missions/dashboard"}, &out, msgDashboardFailed, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPaginated fetches one page of missions.
func (c *MissionClient) ListPaginated(ctx context.Context, q ListQuery) (*model.MissionPage, error) {
	var out model.MissionPage
	r := request{method: http.MethodGet, path: "/missions/paginated", query: q.values()}
	if err := c.call(ctx, r, &out, msgListFailed, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new mission after checking the draft locally.
func (c *MissionClient) Create(ctx context.Context, d model.MissionDraft) (*model.Mission, error) {
	d = d.Normalize()
	if _, err := bearer(ctx, c.tokens); err != nil {
		return nil, err
	}
	if err := ValidateDraft(d); err != nil {
		return nil, err
	}
	var out model.Mission
	if err := c.call(ctx, request{method: http.MethodPost, path: "/missions", body: d}, &out, msgCreateFailed, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches the given fields of mission id.
func (c *MissionClient) Update(ctx context.Context, id uint64, p model.MissionPatch) (*model.Mission, error) {
	if _, err := bearer(ctx, c.tokens); err != nil {
		return nil, err
	}
	if err := ValidatePatch(p); err != nil {
		return nil, err
	}
	var out model.Mission
	r := request{method: http.MethodPatch, path: missionPath(id), body: p}
	if err := c.call(ctx, r, &out, msgUpdateFailed, id); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes mission id.
func (c *MissionClient) Delete(ctx context.Context, id uint64) error {
	return c.call(ctx, request{method: http.MethodDelete, path: missionPath(id)}, nil, msgDeleteFailed, id)
}

// Years lists the distinct years the caller has missions in.
func (c *MissionClient) Years(ctx context.Context) ([]int, error) {
	var out []int
	if err := c.call(ctx, request{method: http.MethodGet, path: "/missions/years"}, &out, msgYearsFailed, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func missionPath(id uint64) string {
	return fmt.Sprintf("/missions/%d", id)
}

// call attaches the bearer token, sends r, translates failures and decodes
// the body into out.  id is only used for NotFoundError.
func (c *MissionClient) call(ctx context.Context, r request, out any, fallback string, id uint64) error {
	token, err := bearer(ctx, c.tokens)
	if err != nil {
		return err
	}
	r.token = token
	res, err := c.api.send(ctx, r)
	if err != nil {
		return &APIError{Message: fallback, Err: err}
	}
	if !res.ok() {
		return c.translate(ctx, res, fallback, id)
	}
	return decode(res, out, fallback)
}

func (c *MissionClient) translate(ctx context.Context, res response, fallback string, id uint64) error {
	switch {
	case res.status == http.StatusUnauthorized:
		if err := c.tokens.ClearToken(ctx); err != nil {
			c.api.Log.Warnf("clear rejected token: %v", err)
		}
		return &AuthenticationError{Status: res.status, Message: orDefault(res.message, "Session expirée, veuillez vous reconnecter")}
	case res.status == http.StatusNotFound:
		return &NotFoundError{ID: id, Message: orDefault(res.message, msgMissionNotFound)}
	case res.status == http.StatusBadRequest || res.status == http.StatusUnprocessableEntity:
		return &ValidationError{Status: res.status, Message: orDefault(res.message, fallback)}
	}
	return &APIError{Status: res.status, Message: orDefault(res.message, fallback)}
}

// ValidateDraft checks the fields the API requires on create.
func ValidateDraft(d model.MissionDraft) error {
	switch {
	case d.Title == "":
		return &ValidationError{Message: "Le titre est obligatoire"}
	case d.Client == "":
		return &ValidationError{Message: "Le client est obligatoire"}
	case !model.IsFinite(d.TJM) || d.TJM <= 0:
		return &ValidationError{Message: "Le TJM doit être positif"}
	case !model.IsFinite(d.Duree) || d.Duree <= 0:
		return &ValidationError{Message: "La durée doit être positive"}
	}
	return validateDate(d.StartDate)
}

// ValidatePatch applies the same rules to the fields present in p.
func ValidatePatch(p model.MissionPatch) error {
	switch {
	case p.Title != nil && *p.Title == "":
		return &ValidationError{Message: "Le titre est obligatoire"}
	case p.Client != nil && *p.Client == "":
		return &ValidationError{Message: "Le client est obligatoire"}
	case p.TJM != nil && (!model.IsFinite(*p.TJM) || *p.TJM <= 0):
		return &ValidationError{Message: "Le TJM doit être positif"}
	case p.Duree != nil && (!model.IsFinite(*p.Duree) || *p.Duree <= 0):
		return &ValidationError{Message: "La durée doit être positive"}
	}
	if p.StartDate != nil {
		return validateDate(*p.StartDate)
	}
	return nil
}

func validateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return &ValidationError{Message: "Date de début invalide (AAAA-MM-JJ)"}
	}
	return nil
}
