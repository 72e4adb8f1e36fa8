// Package cli renders the employee pages on a terminal and routes between them.
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Page is a view the router can display
type Page interface {
	Render(ctx context.Context, w io.Writer) error
}

// PageFunc adapts a function to Page
type PageFunc func(ctx context.Context, w io.Writer) error

// Render calls f(ctx, w)
func (f PageFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Layout icons highlighted for the current route
const (
	IconNone   = ""
	IconWindow = "window"
	IconMail   = "mail"
)

// Router displays the page registered for each route path
type Router struct {
	ctx    context.Context
	out    io.Writer
	logger *zap.Logger

	mu      sync.Mutex
	routes  map[string]Page
	current string
	history []string
}

// NewRouter creates a router writing to out. Pages are rendered with ctx.
func NewRouter(ctx context.Context, out io.Writer, logger *zap.Logger) *Router {
	return &Router{
		ctx:    ctx,
		out:    out,
		logger: logger,
		routes: make(map[string]Page),
	}
}

var _ port.Navigator = (*Router)(nil)

// Register binds a page to a route path
func (r *Router) Register(path string, page Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = page
}

// Navigate records path as the current route and renders its page.
// Unknown paths are recorded but render nothing.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	r.current = path
	r.history = append(r.history, path)
	page, ok := r.routes[path]
	r.mu.Unlock()

	if !ok {
		r.logger.Warn("No page registered for route", zap.String("path", path))
		return
	}

	// rendering happens outside the lock so a page may navigate again
	if err := page.Render(r.ctx, r.out); err != nil {
		r.logger.Error("Failed to render page", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(r.out, "Erreur: %v\n", err)
	}
}

// Current returns the last navigated path
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every navigated path in order
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// ActiveIcon returns the layout icon highlighted for the current route
func (r *Router) ActiveIcon() string {
	switch r.Current() {
	case entity.PathBills:
		return IconWindow
	case entity.PathNewBill:
		return IconMail
	default:
		return IconNone
	}
}
