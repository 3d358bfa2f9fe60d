// Package dnsfilter defines the client abstraction for a DNS filtering
// provider: creating filtering profiles and managing their denylists.
package dnsfilter

import (
	"betblocker/pkg/domain"
	"context"
	"fmt"
)

// UpstreamError is returned when the provider rejects a call with a non-2xx
// status. Message is the best-effort message extracted from the response body.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d: %s", e.Status, e.Message)
}

// Client is the abstraction for DNS filtering providers. Every call is a single
// live round-trip; implementations must not cache or retry.
//
//go:generate mockgen -package mockdnsfilter -source=interface.go -destination=mock/mockdnsfilter.go *
type Client interface {
	// CreateProfile creates a filtering profile with the given name.
	CreateProfile(ctx context.Context, name string) (domain.FilterProfile, error)
	// Denylist returns the denylist entries of a profile.
	Denylist(ctx context.Context, profileID string) ([]domain.DenylistEntry, error)
	// AddDenylist adds an active denylist entry for host.
	AddDenylist(ctx context.Context, profileID, host string) error
	// RemoveDenylist removes the denylist entry for host.
	RemoveDenylist(ctx context.Context, profileID, host string) error
}
