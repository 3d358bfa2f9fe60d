package v1handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"betblocker/internal/api/handler/v1handler"
	"betblocker/internal/blocklist"
	mockblocklist "betblocker/internal/blocklist/mock"
	"betblocker/pkg/dnsfilter"
	"betblocker/pkg/domain"
	"betblocker/pkg/mobileconfig"
	"betblocker/pkg/serrors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"howett.net/plist"
)

// stubSigner returns a fixed outcome without running any tool.
type stubSigner struct {
	signed     bool
	configured bool
}

func (s stubSigner) Sign(_ context.Context, unsigned []byte) mobileconfig.Document {
	if s.signed {
		return mobileconfig.Document{Body: append([]byte("SIGNED"), unsigned...), Signed: true}
	}

	return mobileconfig.Document{Body: unsigned}
}

func (s stubSigner) Configured() bool { return s.configured }

func newHandler(t *testing.T, deps v1handler.Deps) (*mockblocklist.MockService, *v1handler.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mockblocklist.NewMockService(ctrl)
	deps.Blocklist = m
	if deps.Builder == nil {
		deps.Builder = mobileconfig.NewBuilder(mobileconfig.Options{})
	}
	if deps.Signer == nil {
		deps.Signer = stubSigner{}
	}

	return m, v1handler.New(deps)
}

func TestListBlocklist(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().List(gomock.Any(), "p1").Return([]domain.DenylistEntry{
		{Host: "betsite.com", Active: true},
		{Host: "casino.example", Active: false},
	}, nil)

	rec := httptest.NewRecorder()
	h.ListBlocklist(rec, httptest.NewRequest(http.MethodGet, "/blocklist?profileId=p1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"denylist":[{"id":"betsite.com","active":true},{"id":"casino.example","active":false}]}`, rec.Body.String())
}

func TestListBlocklist_Empty(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().List(gomock.Any(), "p1").Return([]domain.DenylistEntry{}, nil)

	rec := httptest.NewRecorder()
	h.ListBlocklist(rec, httptest.NewRequest(http.MethodGet, "/blocklist?profileId=p1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"denylist":[]}`, rec.Body.String())
}

func TestListBlocklist_MissingAPIKey(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().List(gomock.Any(), "p1").
		Return(nil, serrors.With(serrors.ErrConfiguration, "NEXTDNS_API_KEY is not configured on the server"))

	rec := httptest.NewRecorder()
	h.ListBlocklist(rec, httptest.NewRequest(http.MethodGet, "/blocklist?profileId=p1", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"NEXTDNS_API_KEY is not configured on the server","code":"CONFIGURATION"}`, rec.Body.String())
}

func TestAddBlocklist(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().Add(gomock.Any(), "p1", "BetSite.com/path?x=1").Return("Domain betsite.com added to blocklist.", nil)

	req := httptest.NewRequest(http.MethodPost, "/blocklist?profileId=p1", strings.NewReader(`{"domain":"BetSite.com/path?x=1"}`))
	rec := httptest.NewRecorder()
	h.AddBlocklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Domain betsite.com added to blocklist."}`, rec.Body.String())
}

func TestAddBlocklist_InvalidBody(t *testing.T) {
	// No service calls expected
	_, h := newHandler(t, v1handler.Deps{})

	for _, body := range []string{``, `not json`, `{}`, `{"domain":42}`, `{"domain":""}`, `["betsite.com"]`} {
		req := httptest.NewRequest(http.MethodPost, "/blocklist?profileId=p1", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.AddBlocklist(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		require.JSONEq(t, `{"error":"Request body must include a 'domain' string","code":"BAD_REQUEST"}`, rec.Body.String())
	}
}

func TestAddBlocklist_UpstreamRejects(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().Add(gomock.Any(), "p1", "betsite.com").
		Return("", &dnsfilter.UpstreamError{Status: http.StatusForbidden, Message: "Failed to add domain to NextDNS blocklist"})

	req := httptest.NewRequest(http.MethodPost, "/blocklist?profileId=p1", strings.NewReader(`{"domain":"betsite.com"}`))
	rec := httptest.NewRecorder()
	h.AddBlocklist(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"Failed to add domain to NextDNS blocklist","code":"UPSTREAM"}`, rec.Body.String())
}

func TestRemoveBlocklist(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().Remove(gomock.Any(), "", "betsite.com").Return("Domain betsite.com removed from blocklist.", nil)

	req := httptest.NewRequest(http.MethodDelete, "/blocklist", strings.NewReader(`{"domain":"betsite.com"}`))
	rec := httptest.NewRecorder()
	h.RemoveBlocklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Domain betsite.com removed from blocklist."}`, rec.Body.String())
}

func TestRemoveBlocklist_MissingProfile(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().Remove(gomock.Any(), "", "betsite.com").
		Return("", serrors.With(serrors.ErrBadRequest, blocklist.MissingProfileIDMessage))

	req := httptest.NewRequest(http.MethodDelete, "/blocklist", strings.NewReader(`{"domain":"betsite.com"}`))
	rec := httptest.NewRecorder()
	h.RemoveBlocklist(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Missing required query parameter: profileId","code":"BAD_REQUEST"}`, rec.Body.String())
}

func TestCreateProfile(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().CreateProfile(gomock.Any(), "family").Return(domain.FilterProfile{ID: "abc123", Name: "family"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(`{"label":"family"}`))
	rec := httptest.NewRecorder()
	h.CreateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"profileId":"abc123","name":"family"}`, rec.Body.String())
}

func TestCreateProfile_NoBody(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().CreateProfile(gomock.Any(), "").Return(domain.FilterProfile{ID: "xyz", Name: "betblocker_abcdef_1700000000000"}, nil)

	rec := httptest.NewRecorder()
	h.CreateProfile(rec, httptest.NewRequest(http.MethodPost, "/profile", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"profileId":"xyz","name":"betblocker_abcdef_1700000000000"}`, rec.Body.String())
}

func TestCreateProfile_MissingID(t *testing.T) {
	m, h := newHandler(t, v1handler.Deps{})
	m.EXPECT().CreateProfile(gomock.Any(), "").Return(domain.FilterProfile{},
		serrors.With(serrors.ErrProtocol, "NextDNS API responded without a profile id. Check your API key and permissions."))

	rec := httptest.NewRecorder()
	h.CreateProfile(rec, httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "without a profile id")
}

func TestGetProfileDocument_Unsigned(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{})

	rec := httptest.NewRecorder()
	h.GetProfileDocument(rec, httptest.NewRequest(http.MethodGet, "/profile-document?profileId=abc123&password=secret99", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/x-apple-aspen-config", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="betblocker-abc123.mobileconfig"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "false", rec.Header().Get("X-Profile-Signed"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var doc struct {
		PayloadIdentifier string            `plist:"PayloadIdentifier"`
		ConsentText       map[string]string `plist:"ConsentText"`
	}
	_, err := plist.Unmarshal(rec.Body.Bytes(), &doc)
	require.NoError(t, err)
	require.Equal(t, "com.betblocker.nextdns.abc123", doc.PayloadIdentifier)
	require.Contains(t, doc.ConsentText["default"], "secret99")
}

func TestGetProfileDocument_Signed(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{Signer: stubSigner{signed: true, configured: true}})

	rec := httptest.NewRecorder()
	h.GetProfileDocument(rec, httptest.NewRequest(http.MethodGet, "/profile-document?profileId=abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", rec.Header().Get("X-Profile-Signed"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "SIGNED"))
}

func TestGetProfileDocument_Defaults(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{DefaultProfileID: "conf1", RemovalPassword: "fromenv"})

	rec := httptest.NewRecorder()
	h.GetProfileDocument(rec, httptest.NewRequest(http.MethodGet, "/profile-document", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `attachment; filename="betblocker-conf1.mobileconfig"`, rec.Header().Get("Content-Disposition"))
	require.Contains(t, rec.Body.String(), "fromenv")
}

func TestGetProfileDocument_MissingProfileID(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{})

	rec := httptest.NewRecorder()
	h.GetProfileDocument(rec, httptest.NewRequest(http.MethodGet, "/profile-document", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Missing required query parameter: profileId","code":"BAD_REQUEST"}`, rec.Body.String())
}

func TestGetProfileDocument_UnusableProfileID(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{})

	rec := httptest.NewRecorder()
	h.GetProfileDocument(rec, httptest.NewRequest(http.MethodGet, "/profile-document?profileId=%3B%2F", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	_, h := newHandler(t, v1handler.Deps{HasAPIKey: true, DefaultProfileID: "p1", Signer: stubSigner{configured: false}})

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"status":"ok","hasApiKey":true,"hasProfileId":true,"hasRemovalPassword":false,"signingConfigured":false}`,
		rec.Body.String())
	require.NotContains(t, rec.Body.String(), "p1")
}
