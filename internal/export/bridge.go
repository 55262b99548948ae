// Package export turns cleaned diagram text into a downloadable raster
// image through an external conversion service. The export path is
// independent of the inline render pipeline: it takes Tier 1 text
// only, and a remote failure is surfaced to the caller instead of
// degrading through the fallback tiers.
package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint is the public conversion service the original
// deployment used.
const DefaultEndpoint = "https://kroki.io/mermaid/png"

// Result is the outcome of one export request. Failures are
// user-retriable actions, never auto-retried.
type Result struct {
	Success      bool
	ImageBytes   []byte
	ErrorMessage string
}

// Bridge posts diagram text to the conversion endpoint.
type Bridge struct {
	endpoint string
	client   *retryablehttp.Client
}

// NewBridge builds a bridge for the given endpoint. An empty endpoint
// selects DefaultEndpoint.
func NewBridge(endpoint string, timeout time.Duration) *Bridge {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := retryablehttp.NewClient()
	// Automatic retries would mask persistent upstream syntax
	// problems; the user retries explicitly instead.
	client.RetryMax = 0
	client.Logger = nil
	client.HTTPClient.Timeout = timeout

	return &Bridge{endpoint: endpoint, client: client}
}

// Export sends the diagram text and returns the raster payload. The
// returned bytes are owned by the caller for the duration of the
// download action.
func (b *Bridge) Export(ctx context.Context, diagramText string) Result {
	imageBytes, err := b.fetch(ctx, diagramText)
	if err != nil {
		return Result{ErrorMessage: err.Error()}
	}
	return Result{Success: true, ImageBytes: imageBytes}
}

func (b *Bridge) fetch(ctx context.Context, diagramText string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", b.endpoint, []byte(diagramText))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversion request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("conversion service rejected diagram (status %d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
