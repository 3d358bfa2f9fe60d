// Package nextdns provides a dnsfilter.Client implementation backed by the
// NextDNS REST API.
package nextdns

import (
	"betblocker/pkg/dnsfilter"
	"betblocker/pkg/domain"
	"betblocker/pkg/metrics"
	"betblocker/pkg/serrors"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// MissingAPIKeyMessage is reported whenever a call is attempted without an API key.
const MissingAPIKeyMessage = "NEXTDNS_API_KEY is not configured on the server"

// MissingProfileIDMessage is reported when a successful create response carries no id.
const MissingProfileIDMessage = "NextDNS API responded without a profile id. Check your API key and permissions."

// Options configure the NextDNS client.
type Options struct {
	// BaseURL is the API root, e.g. "https://api.nextdns.io".
	BaseURL string
	// APIKey is sent in the X-Api-Key header. Calls fail fast when empty.
	APIKey string
	// Timeout bounds a single API call. Zero disables the client-side bound.
	Timeout time.Duration
}

// Client talks to the NextDNS REST API and fulfills the dnsfilter.Client
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// Ensure Client conforms to the dnsfilter.Client interface at compile time.
var _ dnsfilter.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client.
func New(httpClient *http.Client, opts Options) *Client {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// ExtractMessage returns the best-effort error message of a NextDNS error body.
// It prefers "message", then "error", then the first "errors[].detail" or
// "errors[].code", and finally fallback.
func ExtractMessage(body []byte, fallback string) string {
	var message, errMsg, errCode string

	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return fallback
	}
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message":
			if d.Next() == jx.String {
				s, err := d.Str()
				message = s

				return err
			}
		case "error":
			if d.Next() == jx.String {
				s, err := d.Str()
				errMsg = s

				return err
			}
		case "errors":
			if d.Next() == jx.Array {
				return d.Arr(func(d *jx.Decoder) error {
					if errCode != "" || d.Next() != jx.Object {
						return d.Skip()
					}

					return d.Obj(func(d *jx.Decoder, key string) error {
						if (key == "detail" || key == "code") && d.Next() == jx.String && errCode == "" {
							s, err := d.Str()
							errCode = s

							return err
						}

						return d.Skip()
					})
				})
			}
		}

		return d.Skip()
	})

	switch {
	case message != "":
		return message
	case errMsg != "":
		return errMsg
	case errCode != "":
		return errCode
	default:
		return fallback
	}
}

// do performs one API call and returns the status code and the full body.
func (c *Client) do(ctx context.Context, operation, method, path string, body []byte) (int, []byte, error) {
	if c.opts.APIKey == "" {
		return 0, nil, serrors.With(serrors.ErrConfiguration, MissingAPIKeyMessage)
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.opts.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(operation, 0, time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, serrors.Wrap(serrors.ErrTimeout, err, "NextDNS request timed out")
		}

		return 0, nil, errors.Wrap(err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "could not read response body")
	}

	return resp.StatusCode, b, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func denylistPath(profileID string) string {
	return "/profiles/" + url.PathEscape(profileID) + "/denylist"
}

// CreateProfile creates a NextDNS profile with the given name. The response may
// wrap the profile in a "data" envelope or return it bare; a success response
// without an id is reported as a protocol error.
func (c *Client) CreateProfile(ctx context.Context, name string) (domain.FilterProfile, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(name) })
	})

	status, b, err := c.do(ctx, "profile.create", http.MethodPost, "/profiles", e.Bytes())
	if err != nil {
		return domain.FilterProfile{}, err
	}
	if !isSuccess(status) {
		return domain.FilterProfile{}, &dnsfilter.UpstreamError{
			Status:  status,
			Message: ExtractMessage(b, "Failed to create NextDNS profile"),
		}
	}

	profile := decodeProfile(b)
	if profile.ID == "" {
		return domain.FilterProfile{}, serrors.With(serrors.ErrProtocol, MissingProfileIDMessage)
	}
	if profile.Name == "" {
		profile.Name = name
	}

	return profile, nil
}

// decodeProfile reads id and name from either {"data": {...}} or a bare
// object. Undecodable bodies yield an empty profile.
func decodeProfile(b []byte) domain.FilterProfile {
	var top, data domain.FilterProfile

	readFields := func(d *jx.Decoder, key string, out *domain.FilterProfile) error {
		switch {
		case key == "id" && d.Next() == jx.String:
			s, err := d.Str()
			out.ID = s

			return err
		case key == "name" && d.Next() == jx.String:
			s, err := d.Str()
			out.Name = s

			return err
		default:
			return d.Skip()
		}
	}

	d := jx.DecodeBytes(b)
	if d.Next() != jx.Object {
		return domain.FilterProfile{}
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "data" && d.Next() == jx.Object {
			return d.Obj(func(d *jx.Decoder, key string) error {
				return readFields(d, key, &data)
			})
		}

		return readFields(d, key, &top)
	})
	if err != nil {
		return domain.FilterProfile{}
	}

	if data.ID != "" {
		return data
	}

	return top
}

// Denylist fetches the denylist of the profile. Both a bare array and a
// {"data": [...]} envelope are accepted.
func (c *Client) Denylist(ctx context.Context, profileID string) ([]domain.DenylistEntry, error) {
	status, b, err := c.do(ctx, "denylist.list", http.MethodGet, denylistPath(profileID), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &dnsfilter.UpstreamError{
			Status:  status,
			Message: ExtractMessage(b, "Failed to fetch blocklist from NextDNS"),
		}
	}

	entries, err := decodeDenylist(b)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrProtocol, err, "could not decode NextDNS denylist")
	}

	return entries, nil
}

func decodeDenylist(b []byte) ([]domain.DenylistEntry, error) {
	entries := make([]domain.DenylistEntry, 0)

	d := jx.DecodeBytes(b)
	switch d.Next() {
	case jx.Array:
		return entries, decodeEntries(d, &entries)
	case jx.Object:
		err := d.Obj(func(d *jx.Decoder, key string) error {
			if key == "data" && d.Next() == jx.Array {
				return decodeEntries(d, &entries)
			}

			return d.Skip()
		})

		return entries, err
	case jx.Invalid:
		if len(bytes.TrimSpace(b)) == 0 {
			return entries, nil
		}

		return nil, errors.New("invalid json body")
	default:
		return entries, nil
	}
}

func decodeEntries(d *jx.Decoder, out *[]domain.DenylistEntry) error {
	return d.Arr(func(d *jx.Decoder) error {
		var entry domain.DenylistEntry
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch {
			case key == "id" && d.Next() == jx.String:
				s, err := d.Str()
				entry.Host = s

				return err
			case key == "active" && d.Next() == jx.Bool:
				v, err := d.Bool()
				entry.Active = v

				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return errors.Wrap(err, "decode entry")
		}
		*out = append(*out, entry)

		return nil
	})
}

// AddDenylist adds host as an active denylist entry.
func (c *Client) AddDenylist(ctx context.Context, profileID, host string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(host) })
		e.Field("active", func(e *jx.Encoder) { e.Bool(true) })
	})

	status, b, err := c.do(ctx, "denylist.add", http.MethodPost, denylistPath(profileID), e.Bytes())
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &dnsfilter.UpstreamError{
			Status:  status,
			Message: ExtractMessage(b, "Failed to add domain to NextDNS blocklist"),
		}
	}

	return nil
}

// RemoveDenylist deletes the denylist entry for host.
func (c *Client) RemoveDenylist(ctx context.Context, profileID, host string) error {
	path := denylistPath(profileID) + "/" + url.PathEscape(host)

	status, b, err := c.do(ctx, "denylist.remove", http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &dnsfilter.UpstreamError{
			Status:  status,
			Message: ExtractMessage(b, "Failed to remove domain from NextDNS blocklist"),
		}
	}

	return nil
}
