package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxExportBytes = 16 << 20

// FetchExport downloads a schedule export from a listings endpoint.
// Oversized or non-200 responses are errors; body size is capped so a
// misbehaving source cannot exhaust memory.
func FetchExport(ctx context.Context, url string) ([]byte, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule export: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read schedule export: %w", err)
	}
	if len(body) > maxExportBytes {
		return nil, fmt.Errorf("schedule export exceeds %d bytes", maxExportBytes)
	}
	return body, nil
}
