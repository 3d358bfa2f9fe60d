package v1handler

import (
	"betblocker/internal/blocklist"
	"betblocker/pkg/logger"
	"betblocker/pkg/mobileconfig"
	"betblocker/pkg/serrors"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// GetProfileDocument handles GET /profile-document?profileId=&password=. The
// response carries a removal password when one is set, so it is never cached.
func (h Handler) GetProfileDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	profileID := strings.TrimSpace(q.Get("profileId"))
	if profileID == "" {
		profileID = h.deps.DefaultProfileID
	}
	if profileID == "" {
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, blocklist.MissingProfileIDMessage))

		return
	}
	password := q.Get("password")
	if password == "" {
		password = h.deps.RemovalPassword
	}

	unsigned, err := h.deps.Builder.Build(profileID, password)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	doc := h.deps.Signer.Sign(ctx, unsigned)
	if !doc.Signed && h.deps.Signer.Configured() {
		logger.Warn(ctx, "serving unsigned configuration profile", zap.String("profile_id", profileID))
	}

	if h.deps.Documents != nil {
		h.deps.Documents.Add(ctx, 1, metric.WithAttributes(attribute.Bool("signed", doc.Signed)))
	}

	w.Header().Set("Content-Type", mobileconfig.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+mobileconfig.Filename(profileID)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(mobileconfig.SignedHeader, strconv.FormatBool(doc.Signed))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
