// Package resource holds list/create/delete state for one backend collection
// and turns every outcome into a notice.
package resource

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBusy is returned when a create is already in flight.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrUnsupported is returned for operations the resource does not offer.
	ErrUnsupported = errors.New("operation not supported")
	// ErrDeclined is returned when the user did not confirm a removal.
	ErrDeclined = errors.New("removal not confirmed")
)

// Spec configures a Controller. List and ID are required.
type Spec[R any, I any] struct {
	List      func(ctx context.Context, auth string) ([]R, error)
	Get       func(ctx context.Context, auth, id string) (R, error)
	Create    func(ctx context.Context, auth string, in I) (R, error)
	Delete    func(ctx context.Context, auth, id string) error
	ID        func(R) string
	Validate  func(I) error
	Normalize func(I) I
	Notifier  Notifier
	Session   Authorizer
	Messages  Messages
	Name      string
	// Quiet drops failure notices other than session expiry. The owner of a
	// quiet controller reports its failures.
	Quiet bool
}

// Controller owns the ordered item list of one resource. The list is only
// replaced by a successful load and only changed by a successful create or
// delete. It is safe for concurrent use.
type Controller[R any, I any] struct {
	report     *reporter
	spec       Spec[R, I]
	items      []R
	seq        uint64
	mu         sync.RWMutex
	loading    bool
	submitting bool
	formOpen   bool
}

// New creates a controller. It panics when List or ID is missing.
func New[R any, I any](spec Spec[R, I]) *Controller[R, I] {
	if spec.List == nil || spec.ID == nil {
		panic("resource: Spec.List and Spec.ID are required")
	}
	return &Controller[R, I]{
		spec:   spec,
		report: newReporter(spec.Name, spec.Notifier, spec.Session, spec.Quiet),
	}
}

// Mount loads the list. Failures empty the list and emit one notice; there is
// no retry. When loads overlap only the latest one is applied.
func (c *Controller[R, I]) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	auth := c.report.auth()
	items, err := c.spec.List(ctx, auth)

	c.mu.Lock()
	current := seq == c.seq
	if current {
		c.loading = false
		if err != nil {
			c.items = nil
		} else {
			c.items = append([]R(nil), items...)
		}
	}
	c.mu.Unlock()

	if err != nil {
		if current {
			c.report.fail(ctx, "load", auth, err, c.spec.Messages.LoadFailed)
		}
		return err
	}
	if current {
		c.report.succeed("")
	}
	return nil
}

// Create validates in, submits it and prepends the created item.
func (c *Controller[R, I]) Create(ctx context.Context, in I) (R, error) {
	var zero R
	if c.spec.Create == nil {
		return zero, ErrUnsupported
	}

	if c.spec.Validate != nil {
		if err := c.spec.Validate(in); err != nil {
			c.report.fail(ctx, "create", "", err, c.spec.Messages.CreateFailed)
			return zero, err
		}
	}
	if c.spec.Normalize != nil {
		in = c.spec.Normalize(in)
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return zero, ErrBusy
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	auth := c.report.auth()
	item, err := c.spec.Create(ctx, auth, in)
	if err != nil {
		c.report.fail(ctx, "create", auth, err, c.spec.Messages.CreateFailed)
		return zero, err
	}

	c.mu.Lock()
	c.items = append([]R{item}, c.items...)
	c.formOpen = false
	c.mu.Unlock()

	c.report.succeed(c.spec.Messages.CreateSucceeded)
	return item, nil
}

// Remove deletes the item with id once confirm approves. The item is removed
// by identity, so concurrent changes to the list do not shift the target.
func (c *Controller[R, I]) Remove(ctx context.Context, id string, confirm Confirmer) error {
	if c.spec.Delete == nil {
		return ErrUnsupported
	}
	if confirm == nil || !confirm.Confirm(c.spec.Messages.RemovePrompt) {
		return ErrDeclined
	}

	auth := c.report.auth()
	if err := c.spec.Delete(ctx, auth, id); err != nil {
		c.report.fail(ctx, "delete", auth, err, c.spec.Messages.RemoveFailed)
		return err
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if c.spec.ID(item) != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.report.succeed(c.spec.Messages.RemoveSucceeded)
	return nil
}

// Get fetches one item and refreshes it in place when it is listed.
func (c *Controller[R, I]) Get(ctx context.Context, id string) (R, error) {
	var zero R
	if c.spec.Get == nil {
		return zero, ErrUnsupported
	}

	auth := c.report.auth()
	item, err := c.spec.Get(ctx, auth, id)
	if err != nil {
		c.report.fail(ctx, "get", auth, err, c.spec.Messages.GetFailed)
		return zero, err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.spec.ID(c.items[i]) == id {
			c.items[i] = item
			break
		}
	}
	c.mu.Unlock()

	c.report.succeed("")
	return item, nil
}

// RemovePrompt is the question asked before a removal.
func (c *Controller[R, I]) RemovePrompt() string {
	return c.spec.Messages.RemovePrompt
}

// OpenForm shows the create form.
func (c *Controller[R, I]) OpenForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formOpen = true
}

// CloseForm hides the create form.
func (c *Controller[R, I]) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formOpen = false
}

// Items returns a copy of the current list.
func (c *Controller[R, I]) Items() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]R(nil), c.items...)
}

// Find returns the item with id.
func (c *Controller[R, I]) Find(id string) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.spec.ID(item) == id {
			return item, true
		}
	}
	var zero R
	return zero, false
}

// Len returns the number of items.
func (c *Controller[R, I]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loading reports whether a load is in flight.
func (c *Controller[R, I]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Submitting reports whether a create is in flight.
func (c *Controller[R, I]) Submitting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.submitting
}

// FormOpen reports whether the create form is shown.
func (c *Controller[R, I]) FormOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.formOpen
}

// LastError returns the most recent failure, cleared by the next success.
func (c *Controller[R, I]) LastError() error {
	return c.report.last()
}
