package update

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/vocatrain/pkg/models"
)

// versionKey is the document the cache version record is stored under
const versionKey = "cache_version"

// settleDelay gives the platform a moment to finish staging before the
// staged version is re-inspected. Tests shrink it to zero.
var settleDelay = 500 * time.Millisecond

// State is one node of the update state machine
type State string

const (
	StateIdle            State = "idle"
	StateChecking        State = "checking"
	StateUpdateAvailable State = "update_available"
	StateInstalling      State = "installing"
	StateInstalled       State = "installed"
)

// Platform abstracts the hosting environment's update mechanism: whatever
// stages new content versions and can activate one.
type Platform interface {
	// StagedVersion returns the identifier of a staged version, or "" when
	// nothing is staged.
	StagedVersion(ctx context.Context) (string, error)
	// Activate makes the staged version the running one
	Activate(ctx context.Context, version string) error
	// Reload restarts the client so code and assets match the new version
	Reload()
}

// Documents is the persistence surface for the version record
type Documents interface {
	Get(key string, out interface{}) (bool, error)
	Put(key string, value interface{}) error
	Delete(key string) error
}

// SnapshotClearer wipes in-flight session snapshots before an install, since
// a new version's data shape may be incompatible with them.
type SnapshotClearer interface {
	ClearAll()
}

// Status is the user-visible view of the coordinator
type Status struct {
	State            State  `json:"state"`
	InstalledVersion string `json:"installed_version"`
	PendingVersion   string `json:"pending_version,omitempty"`
	UpdateAvailable  bool   `json:"update_available"`
	LastError        string `json:"last_error,omitempty"`
}

// Coordinator tracks the installed content-cache version against staged
// ones and gates the user-visible install action. The scheduler's hourly
// poll and the bot's check button reach it from different goroutines, so
// the mutex serializes whole checks and installs, not just field access.
type Coordinator struct {
	mu       sync.Mutex
	docs     Documents
	platform Platform
	snaps    SnapshotClearer
	state    State
	record   models.CacheVersionRecord
	lastErr  string
}

// NewCoordinator loads the persisted version record. A record that already
// carries the update-available flag puts the machine straight into
// UpdateAvailable so the action survives reloads.
func NewCoordinator(docs Documents, platform Platform, snaps SnapshotClearer, runningVersion string) *Coordinator {
	c := &Coordinator{
		docs:     docs,
		platform: platform,
		snaps:    snaps,
		state:    StateIdle,
	}
	found, err := docs.Get(versionKey, &c.record)
	if err != nil {
		log.Printf("update: failed to load version record: %v", err)
	}
	if !found || c.record.InstalledVersion == "" {
		c.record.InstalledVersion = runningVersion
		c.persist()
	}
	if c.record.UpdateAvailable && c.record.PendingVersion != "" {
		c.state = StateUpdateAvailable
	}
	return c
}

// Status returns the current user-visible state
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

// status builds the view. Callers hold the mutex.
func (c *Coordinator) status() Status {
	return Status{
		State:            c.state,
		InstalledVersion: c.record.InstalledVersion,
		PendingVersion:   c.record.PendingVersion,
		UpdateAvailable:  c.record.UpdateAvailable,
		LastError:        c.lastErr,
	}
}

// Check asks the platform for a staged version and compares it against the
// installed one. Errors surface to the caller as a retryable failure and
// drop the machine back to Idle; they are never reported as success.
func (c *Coordinator) Check(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateChecking
	c.lastErr = ""

	staged, err := c.platform.StagedVersion(ctx)
	if err != nil {
		c.state = StateIdle
		c.lastErr = fmt.Sprintf("update check failed: %v", err)
		return c.status(), fmt.Errorf("update check failed: %v", err)
	}

	// Give the platform a moment to finish staging, then re-inspect
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		c.state = StateIdle
		return c.status(), ctx.Err()
	}
	if again, err := c.platform.StagedVersion(ctx); err == nil {
		staged = again
	}

	if staged != "" && IsNewer(staged, c.record.InstalledVersion) {
		c.state = StateUpdateAvailable
		c.record.PendingVersion = staged
		c.record.UpdateAvailable = true
		c.persist()
		return c.status(), nil
	}

	// No genuine update: reset any stale flag from an earlier check
	c.state = StateIdle
	c.record.PendingVersion = ""
	c.record.UpdateAvailable = false
	c.persist()
	return c.status(), nil
}

// Install activates the pending version. In-flight session snapshots are
// cleared first; every other persisted document (progress, preferences such
// as the voice API key) is left alone. On success the record is updated and
// the platform reload hook fires.
func (c *Coordinator) Install(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUpdateAvailable || c.record.PendingVersion == "" {
		return c.status(), fmt.Errorf("no update available to install")
	}
	pending := c.record.PendingVersion
	c.state = StateInstalling

	c.snaps.ClearAll()

	if err := c.platform.Activate(ctx, pending); err != nil {
		c.state = StateUpdateAvailable
		c.lastErr = fmt.Sprintf("install failed: %v", err)
		return c.status(), fmt.Errorf("failed to install version %s: %v", pending, err)
	}

	c.record.InstalledVersion = pending
	c.record.PendingVersion = ""
	c.record.UpdateAvailable = false
	c.persist()
	c.state = StateInstalled
	c.platform.Reload()
	return c.status(), nil
}

// CheckInBackground runs a check on behalf of the periodic poll and boils
// the outcome down for the scheduler.
func (c *Coordinator) CheckInBackground(ctx context.Context) (bool, string, error) {
	status, err := c.Check(ctx)
	if err != nil {
		return false, "", err
	}
	return status.UpdateAvailable, status.PendingVersion, nil
}

func (c *Coordinator) persist() {
	if err := c.docs.Put(versionKey, c.record); err != nil {
		log.Printf("update: failed to persist version record: %v", err)
	}
}
