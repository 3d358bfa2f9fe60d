package domain

// FilterProfile is a named configuration on the DNS filtering provider.
// Only its identifier is relevant to this service.
type FilterProfile struct {
	// ID is the provider-assigned short identifier, e.g. "abc123".
	ID string `json:"profileId"`
	// Name is the human-readable profile name.
	Name string `json:"name"`
}

// DenylistEntry is a domain the filtering profile refuses to resolve.
type DenylistEntry struct {
	Host   string `json:"id"`
	Active bool   `json:"active"`
}
