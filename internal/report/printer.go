// Package report renders the observable events of a sweep for humans and,
// optionally, as a JSON run summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/sweep"
)

const dryRunPrefix = "[dry-run] "

type styles struct {
	matched lipgloss.Style
	skipped lipgloss.Style
	total   lipgloss.Style
}

// Printer writes one line per event. Styling is dropped automatically when w
// is not a terminal.
type Printer struct {
	w      io.Writer
	action string
	dryRun bool
	styles styles
	clock  func() time.Time

	run RunSummary
	err error
}

var _ sweep.Reporter = (*Printer)(nil)

// NewPrinter builds a Printer describing matches with action, e.g.
// "marked as read and archived".
func NewPrinter(w io.Writer, action string, dryRun bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:      w,
		action: action,
		dryRun: dryRun,
		styles: styles{
			matched: r.NewStyle().Foreground(lipgloss.Color("10")),
			skipped: r.NewStyle().Faint(true),
			total:   r.NewStyle().Bold(true),
		},
		clock: time.Now,
	}
	p.run = RunSummary{Action: action, DryRun: dryRun, StartedAt: p.clock()}
	return p
}

func (p *Printer) Found(folder gmail.LabelID, count int) {
	p.run.Folder = string(folder)
	p.run.Found = count
	if count == 0 {
		p.line(p.styles.total, fmt.Sprintf("No e-mails found in %s.", folder))
		return
	}
	p.line(p.styles.total, fmt.Sprintf("%d e-mails found in %s.", count, folder))
}

func (p *Printer) Matched(msg sweep.Summary, dryRun bool) {
	p.run.Matched++
	p.run.Messages = append(p.run.Messages, newEntry(msg, OutcomeMatched, nil))
	text := fmt.Sprintf("%s %s.", msg.Subject, p.action)
	if dryRun {
		text = dryRunPrefix + text
	}
	p.line(p.styles.matched, text)
}

func (p *Printer) Skipped(msg sweep.Summary, reasons []string) {
	p.run.Skipped++
	p.run.Messages = append(p.run.Messages, newEntry(msg, OutcomeSkipped, reasons))
	p.line(p.styles.skipped, fmt.Sprintf("Skipped %s: %s", msg.Subject, strings.Join(reasons, "; ")))
}

func (p *Printer) Summary(stats sweep.Stats) {
	p.run.Found = stats.Found
	p.run.Matched = stats.Matched
	p.run.Skipped = stats.Skipped
	p.run.FinishedAt = p.clock()
	text := fmt.Sprintf("Total: %d e-mails found, %d %s.", stats.Found, stats.Matched, p.action)
	if p.dryRun {
		text = dryRunPrefix + text
	}
	p.line(p.styles.total, text)
}

// Result returns everything observed so far.
func (p *Printer) Result() RunSummary {
	out := p.run
	if out.FinishedAt.IsZero() {
		out.FinishedAt = p.clock()
	}
	return out
}

// Err returns the first error hit while writing to the output.
func (p *Printer) Err() error { return p.err }

func (p *Printer) line(style lipgloss.Style, text string) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintln(p.w, style.Render(text)); err != nil {
		p.err = fmt.Errorf("write report: %w", err)
	}
}
