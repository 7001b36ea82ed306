package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joshsymonds/inboxsweep/internal/sweep"
)

type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeSkipped Outcome = "skipped"
)

// RunSummary is the machine-readable record of one run. Skipped messages
// only appear when the run was verbose.
type RunSummary struct {
	Folder     string         `json:"folder"`
	Action     string         `json:"action"`
	DryRun     bool           `json:"dry_run"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Found      int            `json:"found"`
	Matched    int            `json:"matched"`
	Skipped    int            `json:"skipped"`
	Messages   []MessageEntry `json:"messages,omitempty"`
}

type MessageEntry struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Received time.Time `json:"received"`
	Outcome  Outcome   `json:"outcome"`
	Reasons  []string  `json:"reasons,omitempty"`
}

func newEntry(msg sweep.Summary, outcome Outcome, reasons []string) MessageEntry {
	return MessageEntry{
		ID:       string(msg.ID),
		Subject:  msg.Subject,
		Received: msg.Received,
		Outcome:  outcome,
		Reasons:  reasons,
	}
}

// WriteJSON serializes the run summary to a path inside the working directory.
func WriteJSON(run RunSummary, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if encodeErr := enc.Encode(run); encodeErr != nil {
		return fmt.Errorf("encode run summary: %w", encodeErr)
	}
	return nil
}
