package blocklist

import (
	"betblocker/internal/config"
	"betblocker/pkg/dnsfilter"
	"betblocker/pkg/domain"
	"betblocker/pkg/logger"
	"betblocker/pkg/serrors"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MissingProfileIDMessage is returned when neither the request nor the
	// configuration names a filtering profile.
	MissingProfileIDMessage = "Missing required query parameter: profileId"
	// MissingDomainMessage is returned when a request carries no usable domain.
	MissingDomainMessage = "Request body must include a 'domain' string"

	defaultNamePrefix = "betblocker"
)

// Options configure the blocklist service.
type Options struct {
	// DefaultProfileID is used when a request does not name a profile.
	DefaultProfileID string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		DefaultProfileID: cfg.NextDNS.ProfileID,
	}
}

// service is the concrete implementation of the Service interface. It validates
// input at the boundary and forwards to the filtering provider.
type service struct {
	options Options
	client  dnsfilter.Client
	now     func() time.Time
}

// New creates a Service backed by the given filtering provider client.
func New(client dnsfilter.Client, options Options) Service {
	return &service{
		options: options,
		client:  client,
		now:     time.Now,
	}
}

// resolveProfileID falls back to the configured default profile.
func (s *service) resolveProfileID(profileID string) (string, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		profileID = s.options.DefaultProfileID
	}
	if profileID == "" {
		return "", serrors.With(serrors.ErrBadRequest, MissingProfileIDMessage)
	}

	return profileID, nil
}

// List returns the live denylist of the profile.
func (s *service) List(ctx context.Context, profileID string) ([]domain.DenylistEntry, error) {
	profileID, err := s.resolveProfileID(profileID)
	if err != nil {
		return nil, err
	}

	entries, err := s.client.Denylist(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("could not list denylist: %w", err)
	}

	return entries, nil
}

// Add normalizes rawDomain and adds it to the profile's denylist. The returned
// string is a confirmation message for the user.
func (s *service) Add(ctx context.Context, profileID, rawDomain string) (string, error) {
	host := NormalizeDomain(rawDomain)
	if host == "" {
		return "", serrors.With(serrors.ErrBadRequest, MissingDomainMessage)
	}
	profileID, err := s.resolveProfileID(profileID)
	if err != nil {
		return "", err
	}

	if err := s.client.AddDenylist(ctx, profileID, host); err != nil {
		return "", fmt.Errorf("could not add %s to denylist: %w", host, err)
	}
	logger.Info(ctx, "domain added to denylist", zap.String("profile_id", profileID), zap.String("domain", host))

	return fmt.Sprintf("Domain %s added to blocklist.", host), nil
}

// Remove deletes host from the profile's denylist. host is matched exactly
// (only trimmed) so entries created outside this service can be removed too.
func (s *service) Remove(ctx context.Context, profileID, host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", serrors.With(serrors.ErrBadRequest, MissingDomainMessage)
	}
	profileID, err := s.resolveProfileID(profileID)
	if err != nil {
		return "", err
	}

	if err := s.client.RemoveDenylist(ctx, profileID, host); err != nil {
		return "", fmt.Errorf("could not remove %s from denylist: %w", host, err)
	}
	logger.Info(ctx, "domain removed from denylist", zap.String("profile_id", profileID), zap.String("domain", host))

	return fmt.Sprintf("Domain %s removed from blocklist.", host), nil
}

// CreateProfile provisions a new filtering profile. Without a label a random
// name is generated so concurrent callers never collide.
func (s *service) CreateProfile(ctx context.Context, label string) (domain.FilterProfile, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		name = s.DefaultName()
	}

	profile, err := s.client.CreateProfile(ctx, name)
	if err != nil {
		return domain.FilterProfile{}, fmt.Errorf("could not create profile: %w", err)
	}
	logger.Info(ctx, "filtering profile created", zap.String("profile_id", profile.ID), zap.String("name", profile.Name))

	return profile, nil
}

// DefaultName returns "betblocker_<random>_<unix millis>".
func (s *service) DefaultName() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]

	return fmt.Sprintf("%s_%s_%d", defaultNamePrefix, random, s.now().UnixMilli())
}
