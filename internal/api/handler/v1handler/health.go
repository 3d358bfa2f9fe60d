package v1handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Healthz reports liveness and which settings are present. Values are never
// included, only whether they are set.
func (h Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			e.Field("hasApiKey", func(e *jx.Encoder) { e.Bool(h.deps.HasAPIKey) })
			e.Field("hasProfileId", func(e *jx.Encoder) { e.Bool(h.deps.DefaultProfileID != "") })
			e.Field("hasRemovalPassword", func(e *jx.Encoder) { e.Bool(h.deps.RemovalPassword != "") })
			e.Field("signingConfigured", func(e *jx.Encoder) { e.Bool(h.deps.Signer != nil && h.deps.Signer.Configured()) })
		})
	})
}
