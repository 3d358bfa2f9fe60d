package v1handler

import (
	"betblocker/internal/blocklist"
	"betblocker/pkg/domain"
	"betblocker/pkg/serrors"
	"io"
	"net/http"

	"github.com/go-faster/jx"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// readStringField returns the string value of key in a JSON object body. A
// missing body, a non-object body or a non-string value all yield "".
func readStringField(r *http.Request, key string) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
	}

	var value string
	d := jx.DecodeBytes(b)
	if d.Next() != jx.Object {
		return "", nil
	}
	if err := d.Obj(func(d *jx.Decoder, k string) error {
		if k == key && d.Next() == jx.String {
			s, err := d.Str()
			value = s

			return err
		}

		return d.Skip()
	}); err != nil {
		return "", nil //nolint: nilerr
	}

	return value, nil
}

// readDomain extracts the "domain" field and rejects requests without one.
func readDomain(r *http.Request) (string, error) {
	v, err := readStringField(r, "domain")
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", serrors.With(serrors.ErrBadRequest, blocklist.MissingDomainMessage)
	}

	return v, nil
}

func encodeEntries(e *jx.Encoder, entries []domain.DenylistEntry) {
	e.Arr(func(e *jx.Encoder) {
		for _, entry := range entries {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(entry.Host) })
				e.Field("active", func(e *jx.Encoder) { e.Bool(entry.Active) })
			})
		}
	})
}

// ListBlocklist handles GET /blocklist?profileId=.
func (h Handler) ListBlocklist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.Blocklist.List(r.Context(), r.URL.Query().Get("profileId"))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("denylist", func(e *jx.Encoder) { encodeEntries(e, entries) })
		})
	})
}

// AddBlocklist handles POST /blocklist?profileId= with body {"domain": "..."}.
func (h Handler) AddBlocklist(w http.ResponseWriter, r *http.Request) {
	d, err := readDomain(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	msg, err := h.deps.Blocklist.Add(r.Context(), r.URL.Query().Get("profileId"), d)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeMessage(w, msg)
}

// RemoveBlocklist handles DELETE /blocklist?profileId= with body {"domain": "..."}.
func (h Handler) RemoveBlocklist(w http.ResponseWriter, r *http.Request) {
	d, err := readDomain(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	msg, err := h.deps.Blocklist.Remove(r.Context(), r.URL.Query().Get("profileId"), d)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeMessage(w, msg)
}
