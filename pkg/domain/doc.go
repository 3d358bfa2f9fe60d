// Package domain contains the entities exchanged with the DNS filtering
// provider: filtering profiles and their denylist entries. Neither is
// persisted locally; the provider owns both.
package domain
