package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/dashboard"
	"github.com/iliyamo/mission-dashboard/internal/middleware"
	"github.com/iliyamo/mission-dashboard/internal/model"
	"github.com/iliyamo/mission-dashboard/internal/session"
	"github.com/iliyamo/mission-dashboard/internal/view"
)

// DashboardHandler serves the dashboard view and its actions.  Each
// session gets its own dashboard.Controller from the registry.
type DashboardHandler struct {
	API         *client.API
	Cookie      middleware.CookieConfig
	Controllers *dashboard.Registry
	Notifier    dashboard.Notifier
	PageSize    int
}

func NewDashboardHandler(api *client.API, cookie middleware.CookieConfig, reg *dashboard.Registry, n dashboard.Notifier, pageSize int) *DashboardHandler {
	return &DashboardHandler{API: api, Cookie: cookie, Controllers: reg, Notifier: n, PageSize: pageSize}
}

// controller returns the session's controller, mounting it on first use.
// The error is the mount error of a new controller.
func (h *DashboardHandler) controller(c echo.Context, sess *session.Session) (*dashboard.Controller, error) {
	ctrl, created := h.Controllers.Get(sess.Handle(), func() *dashboard.Controller {
		opts := []dashboard.Option{dashboard.WithPageSize(h.PageSize)}
		if h.Notifier != nil {
			opts = append(opts, dashboard.WithNotifier(h.Notifier))
		}
		return dashboard.New(client.NewMissionClient(h.API, sess), client.NewAuthClient(h.API, sess), opts...)
	})
	if created {
		return ctrl, ctrl.Mount(c.Request().Context())
	}
	return ctrl, nil
}

// Show renders the dashboard.  ?reload=1 fetches everything again.
func (h *DashboardHandler) Show(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	handle := sess.Handle()
	_, existed := h.Controllers.Lookup(handle)
	ctrl, err := h.controller(c, sess)
	if existed && c.QueryParam("reload") != "" {
		err = ctrl.Mount(c.Request().Context())
	}
	if !sess.HasHandle() || client.IsAuthFailure(err) {
		return h.expire(c, sess, handle)
	}
	return h.render(c, ctrl, http.StatusOK, "")
}

// ChangePage handles the pager.
func (h *DashboardHandler) ChangePage(c echo.Context) error {
	page, err := strconv.Atoi(c.FormValue("page"))
	if err != nil {
		page = 1
	}
	return h.act(c, func(ctrl *dashboard.Controller) error {
		return ctrl.ChangePage(c.Request().Context(), page)
	})
}

// ChangeYear handles the year filter; "all" or an empty value clears it.
func (h *DashboardHandler) ChangeYear(c echo.Context) error {
	var year *int
	if raw := c.FormValue("year"); raw != "" && raw != "all" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return h.act(c, func(*dashboard.Controller) error {
				return &client.ValidationError{Message: "Année invalide"}
			})
		}
		year = &y
	}
	return h.act(c, func(ctrl *dashboard.Controller) error {
		return ctrl.ChangeYear(c.Request().Context(), year)
	})
}

// ChangeLimit handles the page size selector.
func (h *DashboardHandler) ChangeLimit(c echo.Context) error {
	limit, err := strconv.Atoi(c.FormValue("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = h.PageSize
	}
	return h.act(c, func(ctrl *dashboard.Controller) error {
		return ctrl.ChangeLimit(c.Request().Context(), limit)
	})
}

// OpenCreate shows an empty mission form.
func (h *DashboardHandler) OpenCreate(c echo.Context) error {
	return h.act(c, func(ctrl *dashboard.Controller) error { return ctrl.OpenCreate() })
}

// OpenEdit shows the form filled from mission :id.
func (h *DashboardHandler) OpenEdit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return h.act(c, func(*dashboard.Controller) error {
			return &client.NotFoundError{Message: "Mission introuvable"}
		})
	}
	return h.act(c, func(ctrl *dashboard.Controller) error { return ctrl.OpenEdit(id) })
}

// CancelForm closes the form.
func (h *DashboardHandler) CancelForm(c echo.Context) error {
	return h.act(c, func(ctrl *dashboard.Controller) error { return ctrl.CancelForm() })
}

// SubmitForm creates or updates the mission from the posted fields.
func (h *DashboardHandler) SubmitForm(c echo.Context) error {
	d, perr := draftFromForm(c)
	return h.act(c, func(ctrl *dashboard.Controller) error {
		if perr != nil {
			return perr
		}
		return ctrl.Submit(c.Request().Context(), d)
	})
}

// DeleteMission deletes the mission of the open edit form.
func (h *DashboardHandler) DeleteMission(c echo.Context) error {
	return h.act(c, func(ctrl *dashboard.Controller) error { return ctrl.Delete(c.Request().Context()) })
}

// act runs fn on the session's controller.  Success redirects back to the
// dashboard; failure renders it with the error so that form input is kept.
func (h *DashboardHandler) act(c echo.Context, fn func(*dashboard.Controller) error) error {
	sess := middleware.CurrentSession(c)
	handle := sess.Handle()
	ctrl, err := h.controller(c, sess)
	if err == nil {
		err = fn(ctrl)
	}
	if !sess.HasHandle() || client.IsAuthFailure(err) {
		return h.expire(c, sess, handle)
	}
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	notice := ""
	if v := ctrl.Snapshot(); v.Err != client.Message(err) {
		notice = noticeOf(err)
	}
	return h.render(c, ctrl, statusOf(err), notice)
}

// expire ends a session whose token is gone or was rejected.
func (h *DashboardHandler) expire(c echo.Context, sess *session.Session, handle string) error {
	if handle != "" {
		h.Controllers.Drop(handle)
	}
	if err := sess.ClearToken(c.Request().Context()); err != nil {
		c.Logger().Warnf("clear session: %v", err)
	}
	middleware.WriteSessionCookie(c, sess, h.Cookie)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *DashboardHandler) render(c echo.Context, ctrl *dashboard.Controller, status int, notice string) error {
	return c.Render(status, "dashboard", view.DashboardPage{View: ctrl.Snapshot(), Notice: notice})
}

func noticeOf(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrBusy):
		return "Une opération est déjà en cours, veuillez patienter."
	case errors.Is(err, dashboard.ErrNotReady):
		return "Le dashboard n'est pas prêt, rechargez la page."
	case errors.Is(err, dashboard.ErrNoForm):
		return "Aucun formulaire ouvert."
	}
	return client.Message(err)
}

func draftFromForm(c echo.Context) (model.MissionDraft, error) {
	d := model.MissionDraft{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Client:      c.FormValue("client"),
		StartDate:   c.FormValue("startDate"),
	}
	var err error
	if d.TJM, err = model.ParseAmount(c.FormValue("tjm")); err != nil {
		return d, &client.ValidationError{Message: "Le TJM doit être un nombre"}
	}
	if d.Duree, err = model.ParseAmount(c.FormValue("duree")); err != nil {
		return d, &client.ValidationError{Message: "La durée doit être un nombre"}
	}
	return d.Normalize(), nil
}
