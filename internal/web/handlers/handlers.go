package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/viewer"
	"github.com/foxzi/multiverse/internal/web/i18n"
	"github.com/foxzi/multiverse/internal/web/middleware"
	"github.com/foxzi/multiverse/internal/web/session"
	"github.com/foxzi/multiverse/internal/web/views"
)

// CharacterSource loads a single character for the permalink page
type CharacterSource interface {
	GetCharacter(ctx context.Context, id int) (*catalog.Character, error)
}

// Options tunes handler behavior
type Options struct {
	// WaitTimeout bounds how long a page render waits for an
	// outstanding fetch before showing the loading state
	WaitTimeout time.Duration
}

type Handlers struct {
	logger     *slog.Logger
	views      *views.Engine
	bundle     *i18n.Bundle
	sessions   *session.Manager
	characters CharacterSource
	opts       Options
}

func New(logger *slog.Logger, engine *views.Engine, bundle *i18n.Bundle, sessions *session.Manager, characters CharacterSource, opts Options) *Handlers {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}
	return &Handlers{
		logger:     logger,
		views:      engine,
		bundle:     bundle,
		sessions:   sessions,
		characters: characters,
		opts:       opts,
	}
}

// Register mounts the page routes on r
func (h *Handlers) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/", h.Catalog)
	r.Post("/retry", h.Retry)
	r.Get("/select/{id}", h.Select)
	r.Get("/close", h.Close)
	r.Get("/characters/{id}", h.Character)
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// wait gives the latest fetch up to WaitTimeout to settle
func (h *Handlers) wait(r *http.Request, c *viewer.Controller) viewer.Snapshot {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.WaitTimeout)
	defer cancel()

	if err := c.Wait(ctx); err != nil {
		h.logger.Debug("rendering before fetch settled", "error", err)
	}
	return c.Snapshot()
}

// base builds the language-dependent page data
func (h *Handlers) base(r *http.Request, f catalog.FilterSet) views.Base {
	tag := middleware.GetLanguage(r, h.bundle.Default())

	var links []views.LanguageLink
	for _, o := range h.bundle.Options(tag) {
		links = append(links, views.LanguageLink{
			Tag:    o.Tag,
			Label:  o.Label,
			Href:   views.LanguageHref(r.URL.Path, f, o.Tag),
			Active: o.Active,
		})
	}

	return views.NewBase(tag.String(), links, h.bundle.Printer(tag))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Helper to render templates. Output is buffered so a failing template
// never leaves a half-written page.
func (h *Handlers) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		h.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// renderPartial renders one block for htmx swaps
func (h *Handlers) renderPartial(w http.ResponseWriter, name, block string, data any) {
	var buf bytes.Buffer
	if err := h.views.RenderPartial(&buf, name, block, data); err != nil {
		h.logger.Error("failed to render partial", "template", name, "block", block, "error", err)
		h.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Helper for errors
func (h *Handlers) error(w http.ResponseWriter, status int, message string) {
	h.logger.Warn("request error", "status", status, "message", message)
	http.Error(w, message, status)
}
