package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/rickmorty"
	"github.com/foxzi/multiverse/internal/viewer"
	"github.com/foxzi/multiverse/internal/web/views"
)

// Catalog renders the character list for the query string. Full page
// loads with a non-canonical query are redirected so the address bar
// always matches the session's navigation store.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	f := query.FromValues(r.URL.Query())

	if !isHTMX(r) && !query.IsCanonical(r.URL.RawQuery) {
		http.Redirect(w, r, "/?"+query.Encode(f), http.StatusSeeOther)
		return
	}

	c := h.sessions.Get(w, r, f)
	c.Navigate(f)

	h.renderCatalog(w, r, c)
}

// Retry re-issues the fetch for the current filters
func (h *Handlers) Retry(w http.ResponseWriter, r *http.Request) {
	f := query.FromValues(r.URL.Query())

	c := h.sessions.Get(w, r, f)
	if !c.Navigate(f) {
		c.Retry()
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/?"+query.Encode(f), http.StatusSeeOther)
		return
	}
	h.renderCatalog(w, r, c)
}

// Select opens the detail overlay for a character on the current page
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	id, err := rickmorty.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusBadRequest, err.Error())
		return
	}

	f := query.FromValues(r.URL.Query())
	c := h.sessions.Get(w, r, f)
	c.Navigate(f)
	h.wait(r, c)

	if err := c.Select(id); err != nil {
		if errors.Is(err, viewer.ErrNotOnPage) {
			h.error(w, http.StatusNotFound, err.Error())
			return
		}
		h.error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/?"+query.Encode(f), http.StatusSeeOther)
		return
	}

	snap := c.Snapshot()
	page := views.NewCatalogPage(h.base(r, snap.Filters), snap)
	h.renderPartial(w, "catalog", "detail-overlay", page)
}

// Close dismisses the detail overlay
func (h *Handlers) Close(w http.ResponseWriter, r *http.Request) {
	f := query.FromValues(r.URL.Query())

	if c, ok := h.sessions.Lookup(r); ok {
		c.CloseDetail()
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/?"+query.Encode(f), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) renderCatalog(w http.ResponseWriter, r *http.Request, c *viewer.Controller) {
	snap := h.wait(r, c)
	page := views.NewCatalogPage(h.base(r, snap.Filters), snap)

	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", "/?"+page.Query)
		h.renderPartial(w, "catalog", "catalog-main", page)
		return
	}
	h.render(w, "catalog", page)
}
