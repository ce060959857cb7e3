package dashboard

import (
	"context"
	"sync"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/model"
	"github.com/iliyamo/mission-dashboard/internal/queue"
)

// Mount loads the summary, the first page, the year list and the profile
// concurrently.  Summary and page failures put the controller in Errored;
// year and profile failures are only logged.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.transition(Loading); err != nil {
		c.mu.Unlock()
		return err
	}
	c.err = ""
	c.pageNum = client.DefaultPage
	sumID, pageID := c.issue(slotSummary), c.issue(slotPage)
	yearsID, userID := c.issue(slotYears), c.issue(slotUser)
	q := c.query()
	c.mu.Unlock()

	var (
		wg               sync.WaitGroup
		sum              *model.DashboardSummary
		page             *model.MissionPage
		years            []int
		user             *model.User
		sumErr, pageErr  error
		yearsErr, usrErr error
	)
	wg.Add(4)
	go func() { defer wg.Done(); sum, sumErr = c.missions.Dashboard(ctx) }()
	go func() { defer wg.Done(); page, pageErr = c.missions.ListPaginated(ctx, q) }()
	go func() { defer wg.Done(); years, yearsErr = c.missions.Years(ctx) }()
	go func() { defer wg.Done(); user, usrErr = c.profiles.CurrentUser(ctx) }()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest(slotYears, yearsID) {
		if yearsErr != nil {
			c.log.Warnf("load years: %v", yearsErr)
		} else {
			c.years = years
		}
	}
	if c.latest(slotUser, userID) {
		if usrErr != nil {
			c.log.Warnf("load profile: %v", usrErr)
		} else {
			c.user = user
		}
	}
	if !c.latest(slotSummary, sumID) && !c.latest(slotPage, pageID) {
		return nil
	}
	return c.settle(sumID, sum, sumErr, pageID, page, pageErr)
}

// settle applies a summary and page result pair and leaves Loading or
// Submitting.  Caller holds mu.
func (c *Controller) settle(sumID uint64, sum *model.DashboardSummary, sumErr error, pageID uint64, page *model.MissionPage, pageErr error) error {
	var fatal error
	if c.latest(slotSummary, sumID) {
		if sumErr != nil {
			fatal = sumErr
		} else {
			c.summary = sum
		}
	}
	if c.latest(slotPage, pageID) {
		if pageErr != nil {
			if fatal == nil {
				fatal = pageErr
			}
		} else {
			c.applyPage(page)
		}
	}
	if fatal != nil {
		c.fail(fatal)
		return fatal
	}
	return c.transition(Ready)
}

// applyPage stores a page and keeps pageNum in line with what the server
// answered.  Caller holds mu.
func (c *Controller) applyPage(p *model.MissionPage) {
	c.page = p
	if p.Page > 0 {
		c.pageNum = p.Page
	}
}

// OpenCreate opens an empty form.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := guard(c.state); err != nil {
		return err
	}
	c.form = &Form{Mode: CreateMode}
	return nil
}

// OpenEdit opens the form pre-filled from mission id, which must be on the
// current page.
func (c *Controller) OpenEdit(id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := guard(c.state); err != nil {
		return err
	}
	if c.page != nil {
		for i := range c.page.Missions {
			if c.page.Missions[i].ID == id {
				m := c.page.Missions[i]
				c.form = &Form{Mode: EditMode, Mission: &m, Draft: model.DraftFrom(m)}
				return nil
			}
		}
	}
	return &client.NotFoundError{ID: id, Message: "Mission introuvable"}
}

// CancelForm closes the form and drops the draft.
func (c *Controller) CancelForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrBusy
	}
	c.form = nil
	if c.state == Ready {
		c.err = ""
	}
	return nil
}

// Submit sends the form: a create in CreateMode, an update of the changed
// fields in EditMode.  While a submission is in flight any further Submit
// or Delete returns ErrBusy without a request.  On failure the form stays
// open with d in it.
func (c *Controller) Submit(ctx context.Context, d model.MissionDraft) error {
	c.mu.Lock()
	if err := guard(c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.form == nil {
		c.mu.Unlock()
		return ErrNoForm
	}
	if err := c.transition(Submitting); err != nil {
		c.mu.Unlock()
		return err
	}
	c.form.Draft = d.Normalize()
	form := *c.form
	c.mu.Unlock()

	var (
		saved *model.Mission
		err   error
		kind  = queue.MissionCreated
	)
	switch form.Mode {
	case CreateMode:
		saved, err = c.missions.Create(ctx, form.Draft)
	case EditMode:
		kind = queue.MissionUpdated
		patch := form.Draft.Diff(model.DraftFrom(*form.Mission))
		if patch.IsEmpty() {
			c.mu.Lock()
			c.form = nil
			c.err = ""
			err := c.transition(Ready)
			c.mu.Unlock()
			return err
		}
		saved, err = c.missions.Update(ctx, form.Mission.ID, patch)
	}
	if err != nil {
		c.mu.Lock()
		c.err = client.Message(err)
		_ = c.transition(Ready)
		c.mu.Unlock()
		return err
	}
	c.publish(ctx, kind, saved)
	return c.afterMutation(ctx, false, 0)
}

// Delete removes the mission of the open edit form.  If the current page
// no longer exists afterwards, the controller steps back one page.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if err := guard(c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.form == nil || c.form.Mode != EditMode {
		c.mu.Unlock()
		return ErrNoForm
	}
	if err := c.transition(Submitting); err != nil {
		c.mu.Unlock()
		return err
	}
	m := *c.form.Mission
	total := 0
	if c.page != nil {
		total = c.page.Total
	}
	c.mu.Unlock()

	if err := c.missions.Delete(ctx, m.ID); err != nil {
		c.mu.Lock()
		c.err = client.Message(err)
		_ = c.transition(Ready)
		c.mu.Unlock()
		return err
	}
	c.publish(ctx, queue.MissionDeleted, &m)
	return c.afterMutation(ctx, true, total-1)
}

// afterMutation closes the form and refreshes the summary and the page.
// After a delete, newTotal decides whether the current page still exists.
func (c *Controller) afterMutation(ctx context.Context, deleted bool, newTotal int) error {
	c.mu.Lock()
	c.form = nil
	c.err = ""
	if deleted {
		if newTotal < 0 {
			newTotal = 0
		}
		pages := model.TotalPagesFor(newTotal, c.limit)
		if pages < 1 {
			pages = 1
		}
		if c.pageNum > pages {
			c.pageNum--
		}
		if c.pageNum < 1 {
			c.pageNum = 1
		}
	}
	sumID, pageID := c.issue(slotSummary), c.issue(slotPage)
	q := c.query()
	c.mu.Unlock()

	var (
		wg              sync.WaitGroup
		sum             *model.DashboardSummary
		page            *model.MissionPage
		sumErr, pageErr error
	)
	wg.Add(2)
	go func() { defer wg.Done(); sum, sumErr = c.missions.Dashboard(ctx) }()
	go func() { defer wg.Done(); page, pageErr = c.missions.ListPaginated(ctx, q) }()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settle(sumID, sum, sumErr, pageID, page, pageErr)
}

// ChangePage fetches another page with the current filter.
func (c *Controller) ChangePage(ctx context.Context, page int) error {
	return c.refetchPage(ctx, func() {
		if c.page != nil {
			page = model.ClampPage(page, c.page.TotalPages)
		} else if page < 1 {
			page = 1
		}
		c.pageNum = page
	})
}

// ChangeYear sets the year filter (nil for all years) and goes back to
// page 1.
func (c *Controller) ChangeYear(ctx context.Context, year *int) error {
	return c.refetchPage(ctx, func() {
		c.year = nil
		if year != nil {
			y := *year
			c.year = &y
		}
		c.pageNum = 1
	})
}

// ChangeLimit sets the page size and goes back to page 1.
func (c *Controller) ChangeLimit(ctx context.Context, limit int) error {
	return c.refetchPage(ctx, func() {
		if limit > 0 {
			c.limit = limit
		}
		c.pageNum = 1
	})
}

func (c *Controller) refetchPage(ctx context.Context, mutate func()) error {
	c.mu.Lock()
	if err := guard(c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	mutate()
	id := c.issue(slotPage)
	q := c.query()
	c.mu.Unlock()

	page, err := c.missions.ListPaginated(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(slotPage, id) {
		return nil
	}
	if err != nil {
		if c.state == Ready {
			c.fail(err)
		}
		return err
	}
	c.applyPage(page)
	if c.state == Ready {
		c.err = ""
	}
	return nil
}

// Logout clears the session token and resets the controller.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.profiles.Logout(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	// Outstanding responses must not land in the reset state.
	for s := range c.seq {
		c.seq[s]++
	}
	c.state = Loading
	c.err = ""
	c.summary, c.page, c.user, c.form = nil, nil, nil, nil
	c.years = nil
	c.year = nil
	c.pageNum = client.DefaultPage
	return err
}

func (c *Controller) publish(ctx context.Context, kind queue.MissionEventType, m *model.Mission) {
	if c.notifier == nil || m == nil {
		return
	}
	c.notifier.Notify(ctx, queue.NewMissionEvent(kind, *m))
}
