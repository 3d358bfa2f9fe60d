package v1handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// CreateProfile handles POST /profile with an optional body {"label": "..."}.
func (h Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	label, err := readStringField(r, "label")
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	p, err := h.deps.Blocklist.CreateProfile(r.Context(), label)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("profileId", func(e *jx.Encoder) { e.Str(p.ID) })
			e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		})
	})
}
