package sweep

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/rate"
)

// Stats counts what a run did. Counts only grow during a run.
type Stats struct {
	Found   int
	Matched int
	Skipped int
}

// Reporter receives the observable events of a run.
type Reporter interface {
	Found(folder gmail.LabelID, count int)
	Matched(msg Summary, dryRun bool)
	Skipped(msg Summary, reasons []string)
	Summary(stats Stats)
}

// Service runs a sweep of one folder.
type Service struct {
	Client   gmail.Client
	Limiter  rate.Limiter
	Logger   *slog.Logger
	Clock    func() time.Time
	Reporter Reporter
}

// NewService constructs a Service with sane defaults.
func NewService(
	client gmail.Client,
	limiter rate.Limiter,
	logger *slog.Logger,
	reporter Reporter,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if reporter == nil {
		reporter = discardReporter{}
	}
	return &Service{
		Client:   client,
		Limiter:  limiter,
		Logger:   logger,
		Clock:    time.Now,
		Reporter: reporter,
	}
}

// Run evaluates every message in cfg.Folder and mutates the matches. The
// first mailbox error aborts the run; the summary is still reported with the
// counts reached so far and mutations already applied stay applied.
func (s *Service) Run(ctx context.Context, cfg Config) (Stats, error) {
	var stats Stats
	if err := cfg.Validate(); err != nil {
		return stats, err
	}

	client := pacedClient{next: s.Client, limiter: s.Limiter}
	logger := s.Logger.With(slog.String("folder", string(cfg.Folder)))
	logger.InfoContext(
		ctx,
		"running sweep",
		slog.Int("min_age_days", cfg.MinAgeDays),
		slog.Bool("keep_starred", cfg.KeepStarred),
		slog.String("action", cfg.ActionDescription()),
		slog.Bool("dry_run", cfg.DryRun),
	)

	var table LabelTable
	if len(cfg.LabelFilter) > 0 {
		var err error
		table, err = ResolveLabels(ctx, client)
		if err != nil {
			return stats, err
		}
		s.warnUnknownLabels(ctx, logger, cfg.LabelFilter, table)
	}

	ids, err := CollectIDs(ctx, client, cfg.Folder, cfg.PageSize)
	if err != nil {
		return stats, err
	}
	stats.Found = len(ids)
	s.Reporter.Found(cfg.Folder, len(ids))
	if len(ids) == 0 {
		logger.InfoContext(ctx, "no messages to sweep")
		return stats, nil
	}

	now := s.Clock()
	predicates := BuildPredicates(cfg, table)
	dispatcher := NewDispatcher(client, cfg)
	for _, id := range ids {
		msg, fetchErr := FetchSummary(ctx, client, id)
		if fetchErr != nil {
			s.Reporter.Summary(stats)
			return stats, fetchErr
		}
		decision := Evaluate(msg, predicates, now)
		if !decision.Matched {
			stats.Skipped++
			logger.DebugContext(
				ctx,
				"skipped message",
				slog.String("id", string(id)),
				slog.String("reasons", strings.Join(decision.Reasons, "; ")),
			)
			if cfg.Verbose {
				s.Reporter.Skipped(msg, decision.Reasons)
			}
			continue
		}
		if applyErr := dispatcher.Apply(ctx, id); applyErr != nil {
			s.Reporter.Summary(stats)
			return stats, applyErr
		}
		stats.Matched++
		s.Reporter.Matched(msg, cfg.DryRun)
	}

	s.Reporter.Summary(stats)
	logger.InfoContext(
		ctx,
		"swept",
		slog.Int("found", stats.Found),
		slog.Int("matched", stats.Matched),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (s *Service) warnUnknownLabels(
	ctx context.Context,
	logger *slog.Logger,
	names []string,
	table LabelTable,
) {
	known := make(map[string]struct{}, len(table))
	for _, name := range table {
		known[name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := known[name]; !ok {
			logger.WarnContext(ctx, "label filter names an unknown label", slog.String("label", name))
		}
	}
}

type discardReporter struct{}

func (discardReporter) Found(gmail.LabelID, int)  {}
func (discardReporter) Matched(Summary, bool)     {}
func (discardReporter) Skipped(Summary, []string) {}
func (discardReporter) Summary(Stats)             {}
