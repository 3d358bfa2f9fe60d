package blocklist

import (
	"betblocker/pkg/domain"
	"context"
)

//go:generate mockgen -package mockblocklist -source=interface.go -destination=mock/mockblocklist.go *
type Service interface {
	List(ctx context.Context, profileID string) ([]domain.DenylistEntry, error)
	Add(ctx context.Context, profileID, rawDomain string) (string, error)
	Remove(ctx context.Context, profileID, host string) (string, error)
	CreateProfile(ctx context.Context, label string) (domain.FilterProfile, error)
}
