package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Profile is the display data resolved for one identity key.
type Profile struct {
	DisplayName string `json:"displayName"`
	Image       string `json:"image"`
}

// Directory resolves identity keys to display profiles. Lookups are
// best-effort: the service may be slow or fail for individual keys.
type Directory interface {
	Lookup(ctx context.Context, identityKey string) (Profile, error)
}

// HTTPDirectory implements Directory against the external profile service.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory creates a new HTTPDirectory instance
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the profile for one identity key.
func (d *HTTPDirectory) Lookup(ctx context.Context, identityKey string) (Profile, error) {
	u := fmt.Sprintf("%s/users/%s", d.baseURL, url.PathEscape(identityKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("lookup %s failed: %w", identityKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("lookup %s returned status %d", identityKey, resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"displayName"`
		ImageURL    string `json:"imageUrl"`
		Image       string `json:"image"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile for %s: %w", identityKey, err)
	}

	image := body.ImageURL
	if image == "" {
		image = body.Image
	}
	return Profile{DisplayName: body.DisplayName, Image: image}, nil
}
