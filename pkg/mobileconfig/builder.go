// Package mobileconfig generates Apple configuration profiles that point a
// device at a DNS-over-HTTPS filtering endpoint, and optionally signs them.
package mobileconfig

import (
	"betblocker/pkg/serrors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"howett.net/plist"
)

const (
	// ContentType is the media type of both signed and unsigned documents.
	ContentType = "application/x-apple-aspen-config"

	payloadVersion = 1
)

// Options configure the generated document.
type Options struct {
	// Organization is shown as the profile publisher.
	Organization string
	// IdentifierPrefix is the reverse-DNS root of all payload identifiers.
	IdentifierPrefix string
	// DisplayName is the payload name; the profile name appends the filtering id.
	DisplayName string
	// DNSHost serves DNS-over-HTTPS at https://<DNSHost>/<filtering id>.
	DNSHost string
	// Description is the profile description shown on install.
	Description string
}

func (o Options) withDefaults() Options {
	if o.Organization == "" {
		o.Organization = "BetBlocker"
	}
	if o.IdentifierPrefix == "" {
		o.IdentifierPrefix = "com.betblocker.nextdns"
	}
	if o.DisplayName == "" {
		o.DisplayName = "BetBlocker DNS"
	}
	if o.DNSHost == "" {
		o.DNSHost = "dns.nextdns.io"
	}
	if o.Description == "" {
		o.Description = "Configures this device to use NextDNS for " + o.Organization + "."
	}

	return o
}

// Profile is the top-level Configuration payload.
type Profile struct {
	PayloadType              string            `plist:"PayloadType"`
	PayloadVersion           int               `plist:"PayloadVersion"`
	PayloadIdentifier        string            `plist:"PayloadIdentifier"`
	PayloadUUID              string            `plist:"PayloadUUID"`
	PayloadDisplayName       string            `plist:"PayloadDisplayName"`
	PayloadDescription       string            `plist:"PayloadDescription"`
	PayloadOrganization      string            `plist:"PayloadOrganization"`
	PayloadScope             string            `plist:"PayloadScope"`
	PayloadRemovalDisallowed bool              `plist:"PayloadRemovalDisallowed"`
	ConsentText              map[string]string `plist:"ConsentText"`
	PayloadContent           []any             `plist:"PayloadContent"`
}

// DNSPayload is a com.apple.dnsSettings.managed payload.
type DNSPayload struct {
	PayloadType        string      `plist:"PayloadType"`
	PayloadVersion     int         `plist:"PayloadVersion"`
	PayloadIdentifier  string      `plist:"PayloadIdentifier"`
	PayloadUUID        string      `plist:"PayloadUUID"`
	PayloadDisplayName string      `plist:"PayloadDisplayName"`
	DNSSettings        DNSSettings `plist:"DNSSettings"`
}

// DNSSettings selects DNS-over-HTTPS.
type DNSSettings struct {
	DNSProtocol     string   `plist:"DNSProtocol"`
	ServerURL       string   `plist:"ServerURL"`
	ServerAddresses []string `plist:"ServerAddresses"`
}

// RemovalPasswordPayload requires a password to remove the profile.
type RemovalPasswordPayload struct {
	PayloadType        string `plist:"PayloadType"`
	PayloadVersion     int    `plist:"PayloadVersion"`
	PayloadIdentifier  string `plist:"PayloadIdentifier"`
	PayloadUUID        string `plist:"PayloadUUID"`
	PayloadDisplayName string `plist:"PayloadDisplayName"`
	RemovalPassword    string `plist:"RemovalPassword"`
}

// Builder renders unsigned configuration documents. It holds no mutable state
// and is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder constructs a Builder. Empty options fall back to the BetBlocker defaults.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// SanitizeID keeps only [A-Za-z0-9_-].
func SanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, id)
}

// Filename returns the attachment name used when serving the document.
func Filename(filteringID string) string {
	return "betblocker-" + SanitizeID(filteringID) + ".mobileconfig"
}

// ServerURL returns the DNS-over-HTTPS endpoint of a filtering profile.
func (b *Builder) ServerURL(filteringID string) string {
	return "https://" + b.opts.DNSHost + "/" + SanitizeID(filteringID)
}

// ConsentText is the message shown before install. With a password it repeats
// the password so the installing user's partner can read it back.
func (b *Builder) ConsentText(removalPassword string) string {
	if removalPassword == "" {
		return fmt.Sprintf("This profile sends all DNS lookups through %s filtering to block gambling sites. "+
			"Removing it turns the protection off, so only remove it together with your accountability partner.",
			b.opts.Organization)
	}

	return fmt.Sprintf("This profile sends all DNS lookups through %s filtering to block gambling sites. "+
		"It can only be removed with the password \"%s\". Keep this password with your accountability partner.",
		b.opts.Organization, removalPassword)
}

// Build renders a fresh document for filteringID. Every call generates new
// payload UUIDs. An unset id is a configuration error; an id with no usable
// characters is a bad request.
func (b *Builder) Build(filteringID, removalPassword string) ([]byte, error) {
	if strings.TrimSpace(filteringID) == "" {
		return nil, serrors.With(serrors.ErrConfiguration, "filtering profile id is not configured")
	}
	safeID := SanitizeID(filteringID)
	if safeID == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "profileId must contain letters, digits, '_' or '-'")
	}

	profile := Profile{
		PayloadType:              "Configuration",
		PayloadVersion:           payloadVersion,
		PayloadIdentifier:        b.opts.IdentifierPrefix + "." + safeID,
		PayloadUUID:              uuid.NewString(),
		PayloadDisplayName:       fmt.Sprintf("%s (%s)", b.opts.DisplayName, safeID),
		PayloadDescription:       b.opts.Description,
		PayloadOrganization:      b.opts.Organization,
		PayloadScope:             "System",
		PayloadRemovalDisallowed: false,
		ConsentText:              map[string]string{"default": b.ConsentText(removalPassword)},
		PayloadContent: []any{
			DNSPayload{
				PayloadType:        "com.apple.dnsSettings.managed",
				PayloadVersion:     payloadVersion,
				PayloadIdentifier:  b.opts.IdentifierPrefix + ".dns." + safeID,
				PayloadUUID:        uuid.NewString(),
				PayloadDisplayName: b.opts.DisplayName,
				DNSSettings: DNSSettings{
					DNSProtocol:     "HTTPS",
					ServerURL:       b.ServerURL(safeID),
					ServerAddresses: []string{},
				},
			},
		},
	}
	if removalPassword != "" {
		profile.PayloadContent = append(profile.PayloadContent, RemovalPasswordPayload{
			PayloadType:        "com.apple.profileRemovalPassword",
			PayloadVersion:     payloadVersion,
			PayloadIdentifier:  b.opts.IdentifierPrefix + ".removal." + safeID,
			PayloadUUID:        uuid.NewString(),
			PayloadDisplayName: "Removal Password",
			RemovalPassword:    removalPassword,
		})
	}

	out, err := plist.MarshalIndent(profile, plist.XMLFormat, "  ")
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not encode configuration profile")
	}

	return out, nil
}
