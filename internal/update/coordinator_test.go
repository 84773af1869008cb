package update

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/example/vocatrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocs is an in-memory stand-in for the database document store
type fakeDocs struct {
	data map[string][]byte
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{data: make(map[string][]byte)}
}

func (f *fakeDocs) Get(key string, out interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (f *fakeDocs) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeDocs) Delete(key string) error {
	delete(f.data, key)
	return nil
}

// fakePlatform scripts the staged version and records activations
type fakePlatform struct {
	staged      string
	stagedErr   error
	activateErr error
	activated   []string
	reloads     int
}

func (p *fakePlatform) StagedVersion(ctx context.Context) (string, error) {
	return p.staged, p.stagedErr
}

func (p *fakePlatform) Activate(ctx context.Context, version string) error {
	if p.activateErr != nil {
		return p.activateErr
	}
	p.activated = append(p.activated, version)
	return nil
}

func (p *fakePlatform) Reload() {
	p.reloads++
}

type fakeClearer struct {
	calls int
}

func (c *fakeClearer) ClearAll() {
	c.calls++
}

func noSettle(t *testing.T) {
	t.Helper()
	old := settleDelay
	settleDelay = 0
	t.Cleanup(func() { settleDelay = old })
}

func TestCheckFindsNewerStagedVersion(t *testing.T) {
	noSettle(t)
	platform := &fakePlatform{staged: "1.1.0"}
	c := NewCoordinator(newFakeDocs(), platform, &fakeClearer{}, "1.0.0")

	status, err := c.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateUpdateAvailable, status.State)
	assert.True(t, status.UpdateAvailable)
	assert.Equal(t, "1.1.0", status.PendingVersion)
	assert.Equal(t, "1.0.0", status.InstalledVersion)
}

func TestCheckIgnoresSameAndOlderVersions(t *testing.T) {
	noSettle(t)
	for _, staged := range []string{"", "1.0.0", "0.9.9"} {
		platform := &fakePlatform{staged: staged}
		c := NewCoordinator(newFakeDocs(), platform, &fakeClearer{}, "1.0.0")

		status, err := c.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateIdle, status.State, "staged %q", staged)
		assert.False(t, status.UpdateAvailable)
	}
}

func TestCheckFailureReturnsToIdleWithError(t *testing.T) {
	noSettle(t)
	platform := &fakePlatform{stagedErr: errors.New("network unreachable")}
	c := NewCoordinator(newFakeDocs(), platform, &fakeClearer{}, "1.0.0")

	status, err := c.Check(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateIdle, status.State)
	assert.False(t, status.UpdateAvailable)
	assert.Contains(t, status.LastError, "network unreachable")
}

func TestUpdateAvailableSurvivesReload(t *testing.T) {
	noSettle(t)
	docs := newFakeDocs()
	platform := &fakePlatform{staged: "2.0.0"}

	c1 := NewCoordinator(docs, platform, &fakeClearer{}, "1.0.0")
	_, err := c1.Check(context.Background())
	require.NoError(t, err)

	// A fresh coordinator over the same documents starts in UpdateAvailable
	c2 := NewCoordinator(docs, platform, &fakeClearer{}, "1.0.0")
	status := c2.Status()
	assert.Equal(t, StateUpdateAvailable, status.State)
	assert.Equal(t, "2.0.0", status.PendingVersion)
}

func TestCheckClearsStaleFlag(t *testing.T) {
	noSettle(t)
	docs := newFakeDocs()
	require.NoError(t, docs.Put(versionKey, models.CacheVersionRecord{
		InstalledVersion: "1.0.0",
		PendingVersion:   "1.1.0",
		UpdateAvailable:  true,
	}))

	// The staged version is gone by the next check; the flag resets
	platform := &fakePlatform{staged: ""}
	c := NewCoordinator(docs, platform, &fakeClearer{}, "1.0.0")
	require.Equal(t, StateUpdateAvailable, c.Status().State)

	status, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, status.State)
	assert.False(t, status.UpdateAvailable)
	assert.Empty(t, status.PendingVersion)
}

func TestInstallActivatesAndReloads(t *testing.T) {
	noSettle(t)
	docs := newFakeDocs()
	platform := &fakePlatform{staged: "1.1.0"}
	clearer := &fakeClearer{}
	c := NewCoordinator(docs, platform, clearer, "1.0.0")

	_, err := c.Check(context.Background())
	require.NoError(t, err)

	status, err := c.Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateInstalled, status.State)
	assert.Equal(t, "1.1.0", status.InstalledVersion)
	assert.Empty(t, status.PendingVersion)
	assert.Equal(t, []string{"1.1.0"}, platform.activated)
	assert.Equal(t, 1, platform.reloads)
	assert.Equal(t, 1, clearer.calls)

	// The new installed version is persisted
	var record models.CacheVersionRecord
	found, err := docs.Get(versionKey, &record)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1.1.0", record.InstalledVersion)
	assert.False(t, record.UpdateAvailable)
}

func TestInstallLeavesOtherDocumentsAlone(t *testing.T) {
	noSettle(t)
	docs := newFakeDocs()
	require.NoError(t, docs.Put("pref:voice_api_key", "secret"))
	require.NoError(t, docs.Put("progress", map[string]int{"schema_version": 2}))

	platform := &fakePlatform{staged: "1.1.0"}
	c := NewCoordinator(docs, platform, &fakeClearer{}, "1.0.0")
	_, err := c.Check(context.Background())
	require.NoError(t, err)
	_, err = c.Install(context.Background())
	require.NoError(t, err)

	_, found := docs.data["pref:voice_api_key"]
	assert.True(t, found)
	_, found = docs.data["progress"]
	assert.True(t, found)
}

func TestInstallWithoutPendingUpdateFails(t *testing.T) {
	noSettle(t)
	c := NewCoordinator(newFakeDocs(), &fakePlatform{}, &fakeClearer{}, "1.0.0")

	_, err := c.Install(context.Background())
	assert.Error(t, err)
}

func TestInstallFailureStaysInstallable(t *testing.T) {
	noSettle(t)
	platform := &fakePlatform{staged: "1.1.0", activateErr: errors.New("activation rejected")}
	c := NewCoordinator(newFakeDocs(), platform, &fakeClearer{}, "1.0.0")
	_, err := c.Check(context.Background())
	require.NoError(t, err)

	status, err := c.Install(context.Background())
	require.Error(t, err)

	// The update stays offered so the user can retry
	assert.Equal(t, StateUpdateAvailable, status.State)
	assert.Equal(t, "1.1.0", status.PendingVersion)
	assert.Equal(t, "1.0.0", status.InstalledVersion)
	assert.Contains(t, status.LastError, "activation rejected")
	assert.Zero(t, platform.reloads)
}

func TestConcurrentChecksStayConsistent(t *testing.T) {
	noSettle(t)
	docs := newFakeDocs()
	platform := &fakePlatform{staged: "1.1.0"}
	c := NewCoordinator(docs, platform, &fakeClearer{}, "1.0.0")

	// The scheduler's poll and the user's check button can fire together
	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := c.Check(context.Background()); err != nil {
					t.Error(err)
					return
				}
				c.Status()
			}
		}()
	}
	wg.Wait()

	status := c.Status()
	assert.Equal(t, StateUpdateAvailable, status.State)
	assert.Equal(t, "1.1.0", status.PendingVersion)
	assert.Equal(t, "1.0.0", status.InstalledVersion)

	var record models.CacheVersionRecord
	found, err := docs.Get(versionKey, &record)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1.1.0", record.PendingVersion)
	assert.True(t, record.UpdateAvailable)
}

func TestCheckInBackground(t *testing.T) {
	noSettle(t)
	platform := &fakePlatform{staged: "3.0.0"}
	c := NewCoordinator(newFakeDocs(), platform, &fakeClearer{}, "1.0.0")

	available, version, err := c.CheckInBackground(context.Background())
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, "3.0.0", version)

	platform.stagedErr = errors.New("offline")
	available, _, err = c.CheckInBackground(context.Background())
	assert.Error(t, err)
	assert.False(t, available)
}
