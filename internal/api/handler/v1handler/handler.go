// Package v1handler implements the JSON and document routes of the API.
package v1handler

import (
	"betblocker/internal/blocklist"
	"betblocker/pkg/dnsfilter"
	"betblocker/pkg/logger"
	"betblocker/pkg/mobileconfig"
	"betblocker/pkg/serrors"
	"context"
	"errors"
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// UpstreamCode is the error code reported for errors relayed from the filtering provider.
const UpstreamCode = "UPSTREAM"

// DocumentBuilder renders unsigned configuration documents.
type DocumentBuilder interface {
	Build(filteringID, removalPassword string) ([]byte, error)
}

// DocumentSigner signs configuration documents on a best-effort basis.
type DocumentSigner interface {
	Sign(ctx context.Context, unsigned []byte) mobileconfig.Document
	Configured() bool
}

// Deps are the collaborators of the v1 handlers.
type Deps struct {
	Blocklist blocklist.Service
	Builder   DocumentBuilder
	Signer    DocumentSigner

	// DefaultProfileID is used when a document request names no profile.
	DefaultProfileID string
	// RemovalPassword is used when a document request carries no password.
	RemovalPassword string
	// HasAPIKey is reported by the health route.
	HasAPIKey bool
	// Documents counts served configuration profiles. Optional.
	Documents metric.Int64Counter
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string
	Message string
}

// NewError maps err to a status code and response. Provider rejections keep
// the provider's status; semantic errors use their kind; anything else is a
// 500 with a generic message.
func (h Handler) NewError(ctx context.Context, err error) (int, ErrorResponse) {
	status, res := h.mapError(err)

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err), zap.Int("status_code", status))
	} else {
		logger.Warn(ctx, "request rejected", zap.Error(err), zap.Int("status_code", status))
	}

	return status, res
}

func (h Handler) mapError(err error) (int, ErrorResponse) {
	var upErr *dnsfilter.UpstreamError
	if errors.As(err, &upErr) {
		status := upErr.Status
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusBadGateway
		}

		return status, ErrorResponse{Code: UpstreamCode, Message: upErr.Message}
	}

	kind, msg := serrors.Describe(err)

	return serrors.HTTPStatus(kind), ErrorResponse{Code: kind.Error(), Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, res := h.NewError(r.Context(), err)

	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(res.Message) })
			e.Field("code", func(e *jx.Encoder) { e.Str(res.Code) })
		})
	})
}
