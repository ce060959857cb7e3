// Package dashboard holds the view state of one user's dashboard: the
// summary, the current page of missions, the year filter and the mission
// form.  It reconciles user actions with the mission API.
package dashboard

import (
	"context"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/model"
	"github.com/iliyamo/mission-dashboard/internal/queue"
)

// Missions is the part of client.MissionClient the controller uses.
type Missions interface {
	Dashboard(ctx context.Context) (*model.DashboardSummary, error)
	ListPaginated(ctx context.Context, q client.ListQuery) (*model.MissionPage, error)
	Create(ctx context.Context, d model.MissionDraft) (*model.Mission, error)
	Update(ctx context.Context, id uint64, p model.MissionPatch) (*model.Mission, error)
	Delete(ctx context.Context, id uint64) error
	Years(ctx context.Context) ([]int, error)
}

// Profiles is the part of client.AuthClient the controller uses.
type Profiles interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
}

// Notifier receives an event after every successful mutation.
type Notifier interface {
	Notify(ctx context.Context, ev queue.MissionEvent)
}

type slot int

const (
	slotSummary slot = iota
	slotPage
	slotYears
	slotUser
	slotCount
)

// FormMode tells Submit whether to create or update.
type FormMode int

const (
	CreateMode FormMode = iota
	EditMode
)

// Form is the open mission form.  Mission is the edited mission in
// EditMode and nil in CreateMode.
type Form struct {
	Mode    FormMode
	Mission *model.Mission
	Draft   model.MissionDraft
}

// View is a copy of the controller state for rendering.
type View struct {
	State   State
	Err     string
	Summary *model.DashboardSummary
	Page    *model.MissionPage
	PageNum int
	Limit   int
	Year    *int
	Years   []int
	User    *model.User
	Form    *Form
}

// Controller is the dashboard state machine of one session.  Network calls
// run outside the lock; each fetch slot carries a sequence number and only
// the latest request of a slot may write its result.
type Controller struct {
	missions Missions
	profiles Profiles
	notifier Notifier
	log      *log.Logger

	mu      sync.Mutex
	state   State
	err     string
	seq     [slotCount]uint64
	summary *model.DashboardSummary
	page    *model.MissionPage
	pageNum int
	limit   int
	year    *int
	years   []int
	user    *model.User
	form    *Form
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the mutation event sink.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithPageSize sets the initial page size.
func WithPageSize(limit int) Option {
	return func(c *Controller) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.log = l } }

// New returns a controller in the Loading state; call Mount to populate it.
func New(missions Missions, profiles Profiles, opts ...Option) *Controller {
	c := &Controller{
		missions: missions,
		profiles: profiles,
		state:    Loading,
		pageNum:  client.DefaultPage,
		limit:    client.DefaultLimit,
		log:      log.New("dashboard"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:   c.state,
		Err:     c.err,
		Summary: c.summary,
		Page:    c.page,
		PageNum: c.pageNum,
		Limit:   c.limit,
		Years:   append([]int(nil), c.years...),
		User:    c.user,
	}
	if c.year != nil {
		y := *c.year
		v.Year = &y
	}
	if c.form != nil {
		f := *c.form
		v.Form = &f
	}
	return v
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition moves to `to` if the table allows it.  Caller holds mu.
func (c *Controller) transition(to State) error {
	if c.state == to && to != Submitting {
		return nil
	}
	if !allowed(c.state, to) {
		return &InvalidTransitionError{From: c.state, To: to}
	}
	c.state = to
	return nil
}

// issue starts a new request on s and returns its sequence number.  Caller
// holds mu.
func (c *Controller) issue(s slot) uint64 {
	c.seq[s]++
	return c.seq[s]
}

func (c *Controller) latest(s slot, id uint64) bool {
	return c.seq[s] == id
}

// fail records err and enters Errored.  Caller holds mu.
func (c *Controller) fail(err error) {
	c.err = client.Message(err)
	if terr := c.transition(Errored); terr != nil {
		c.log.Warnf("%v", terr)
	}
}

func (c *Controller) query() client.ListQuery {
	q := client.ListQuery{Page: c.pageNum, Limit: c.limit}
	if c.year != nil {
		y := *c.year
		q.Year = &y
	}
	return q
}
