package models

// CacheVersionRecord tracks the installed content-cache version and any
// staged version the platform has prepared. It lives outside ProgressState
// and survives reloads; PendingVersion is cleared on a successful install.
type CacheVersionRecord struct {
	InstalledVersion string `json:"installed_version"`
	PendingVersion   string `json:"pending_version,omitempty"`
	UpdateAvailable  bool   `json:"update_available"`
}
