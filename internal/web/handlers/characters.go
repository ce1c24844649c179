package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/rickmorty"
	"github.com/foxzi/multiverse/internal/web/views"
)

// Character renders the standalone page of one character
func (h *Handlers) Character(w http.ResponseWriter, r *http.Request) {
	id, err := rickmorty.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusBadRequest, err.Error())
		return
	}

	character, err := h.characters.GetCharacter(r.Context(), id)
	if err != nil {
		if rickmorty.IsNotFound(err) {
			h.error(w, http.StatusNotFound, "Character not found")
			return
		}
		h.logger.Error("failed to get character", "id", id, "error", err)
		h.error(w, http.StatusBadGateway, rickmorty.UserMessage(err))
		return
	}

	page := views.NewCharacterPage(h.base(r, catalog.DefaultFilterSet()), *character)
	h.render(w, "character", page)
}
