// Package summary asks an external text-generation service for a short,
// human-readable condition summary of an asset. The text is opaque to the
// rest of the system.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ErrDisabled is returned when no summary service is configured.
var ErrDisabled = errors.New("asset summary service is not configured")

// Summarizer produces a condition summary for an asset.
type Summarizer interface {
	Summarize(ctx context.Context, asset models.Asset) (string, error)
}

// New returns an HTTP client for the configured service, or a disabled
// summarizer when no URL is set.
func New(cfg config.SummaryConfig) Summarizer {
	if cfg.URL == "" {
		return Disabled{}
	}
	return &Client{
		URL:        cfg.URL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Disabled always returns ErrDisabled.
type Disabled struct{}

// Summarize implements Summarizer.
func (Disabled) Summarize(context.Context, models.Asset) (string, error) {
	return "", ErrDisabled
}

// Client posts the asset and its history as a prompt and returns the
// generated text.
type Client struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

type summaryRequest struct {
	Prompt string `json:"prompt"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize implements Summarizer.
func (c *Client) Summarize(ctx context.Context, asset models.Asset) (string, error) {
	body, err := json.Marshal(summaryRequest{Prompt: Prompt(asset)})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.WithFields(log.Fields{"status": resp.StatusCode, "asset": asset.AssetCode}).Warn("Summary service rejected request")
		return "", fmt.Errorf("summary service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	return strings.TrimSpace(out.Summary), nil
}

// Prompt renders the asset facts the summary is based on.
func Prompt(asset models.Asset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarise the condition of asset %s (%s, %s) located at %s.\n",
		asset.AssetCode, asset.Name, asset.Category, asset.Location)
	fmt.Fprintf(&b, "Status: %s. Health score: %d/100. Current value: %.2f.\n",
		asset.Status, asset.HealthScore, asset.CurrentValue)
	if asset.LastMaintenanceDate != nil {
		fmt.Fprintf(&b, "Last maintained: %s.\n", asset.LastMaintenanceDate.Format(time.DateOnly))
	}
	if asset.NextScheduledMaintenance != nil {
		fmt.Fprintf(&b, "Next scheduled maintenance: %s.\n", asset.NextScheduledMaintenance.Format(time.DateOnly))
	}
	if len(asset.MaintenanceHistory) == 0 {
		b.WriteString("No maintenance has been recorded.\n")
		return b.String()
	}
	b.WriteString("Maintenance history:\n")
	for _, r := range asset.MaintenanceHistory {
		fmt.Fprintf(&b, "- %s %s by %s: %s (cost %.2f)\n",
			r.Date.Format(time.DateOnly), r.Type, r.TechnicianName, r.Description, r.Cost)
	}
	return b.String()
}
