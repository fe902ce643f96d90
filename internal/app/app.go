// Package app owns the kitchen-timer state: the product list, the timer
// registry and the clock they are evaluated against. All mutation goes
// through a single App value, which callers drive from one goroutine.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"klocka/internal/product"
	"klocka/internal/timer"
)

// Storage is the durable key-value backend shared by products and timers.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Row is one line of the run-time view.
type Row struct {
	ID        int64
	Name      string
	Remaining string
	Progress  float64
	State     timer.State
}

func (r Row) Running() bool { return r.State == timer.StateRunning }
func (r Row) Expired() bool { return r.State == timer.StateExpired }

type App struct {
	products *product.Store
	timers   *timer.Registry
	clock    Clock
	logger   *slog.Logger
}

func New(storage Storage, clock Clock, logger *slog.Logger) *App {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		products: product.NewStore(storage, logger),
		timers:   timer.NewRegistry(storage, logger),
		clock:    clock,
		logger:   logger,
	}
}

// Load restores products and timers, drops timers whose product is gone and
// creates timers for every visible product.
func (a *App) Load() error {
	if err := a.products.Load(); err != nil {
		return err
	}
	if err := a.timers.Load(a.clock.Now()); err != nil {
		return err
	}
	if err := a.Prune(); err != nil {
		return err
	}
	return a.sync()
}

// Prune removes timers whose product no longer exists.
func (a *App) Prune() error {
	var errs []error
	for _, id := range a.timers.IDs() {
		if _, ok := a.products.Get(id); ok {
			continue
		}
		a.logger.Debug("removing dangling timer", "product_id", id)
		if _, err := a.timers.Remove(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) sync() error {
	var errs []error
	for _, p := range a.products.Active() {
		if err := a.timers.Sync(p.ID, p.TotalMs()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) Products() []product.Product {
	return a.products.All()
}

func (a *App) AddProduct() (product.Product, error) {
	p, err := a.products.Add()
	if err != nil {
		return p, err
	}
	a.logger.Info("product added", "product_id", p.ID)
	return p, nil
}

// UpdateProduct merges patch into the product; an unknown id is ignored.
func (a *App) UpdateProduct(id int64, patch product.Patch) error {
	p, ok, err := a.products.Update(id, patch)
	if !ok {
		return nil
	}
	a.logger.Info("product updated",
		"product_id", p.ID,
		"name", p.Name,
		"duration", p.Duration(),
		"active", p.Active,
	)
	// The in-memory product changed even if saving failed; keep timers aligned with it.
	return errors.Join(err, a.sync())
}

// DeleteProduct removes the product and, whatever its state, its timer.
func (a *App) DeleteProduct(id int64) error {
	ok, err := a.products.Delete(id)
	if !ok {
		return nil
	}
	if _, terr := a.timers.Remove(id); terr != nil {
		err = errors.Join(err, terr)
	}
	a.logger.Info("product deleted", "product_id", id)
	return err
}

// visible resolves id to a product that currently has a row.
func (a *App) visible(id int64) (product.Product, bool) {
	p, ok := a.products.Get(id)
	if !ok || !p.Visible() {
		return product.Product{}, false
	}
	return p, true
}

func (a *App) Start(id int64) error {
	p, ok := a.visible(id)
	if !ok {
		return nil
	}
	started, err := a.timers.Start(id, a.clock.Now())
	if started {
		a.logger.Info("timer started", "product_id", id, "name", p.Name, "duration", p.Duration())
	}
	return err
}

func (a *App) Stop(id int64) error {
	p, ok := a.visible(id)
	if !ok {
		return nil
	}
	stopped, err := a.timers.Stop(id)
	if stopped {
		a.logger.Info("timer stopped", "product_id", id, "name", p.Name)
	}
	return err
}

func (a *App) StopAll() error {
	var errs []error
	for _, p := range a.products.Active() {
		t, ok := a.timers.Get(p.ID)
		if !ok || t.State() == timer.StateIdle {
			continue
		}
		if err := a.Stop(p.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tick advances every running timer and returns the visible products that expired.
func (a *App) Tick() ([]product.Product, error) {
	ids, err := a.timers.Tick(a.clock.Now())
	var expired []product.Product
	for _, id := range ids {
		p, ok := a.visible(id)
		if !ok {
			continue
		}
		a.logger.Info("timer expired", "product_id", id, "name", p.Name)
		expired = append(expired, p)
	}
	if err != nil {
		return expired, fmt.Errorf("tick: %w", err)
	}
	return expired, nil
}

// Rows projects the visible products and their timers into display rows.
func (a *App) Rows() []Row {
	active := a.products.Active()
	rows := make([]Row, 0, len(active))
	for _, p := range active {
		t, ok := a.timers.Get(p.ID)
		if !ok {
			t = *timer.New(p.TotalMs())
		}
		rows = append(rows, Row{
			ID:        p.ID,
			Name:      p.Name,
			Remaining: timer.FormatDuration(t.RemainingMs),
			Progress:  t.Progress(),
			State:     t.State(),
		})
	}
	return rows
}
