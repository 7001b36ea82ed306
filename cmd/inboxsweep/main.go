package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joshsymonds/inboxsweep/internal/config"
	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/rate"
	"github.com/joshsymonds/inboxsweep/internal/report"
	"github.com/joshsymonds/inboxsweep/internal/runtime"
	"github.com/joshsymonds/inboxsweep/internal/sweep"
)

type flagValues struct {
	configFile string
	envFile    string
	cpuProfile string

	folder   string
	age      int
	starred  bool
	verbose  bool
	archive  bool
	markRead bool
	labels   []string
	dryRun   bool
	pageSize int
	rps      int
	authDir  string
	jsonPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		runtime.DefaultLogger(slog.LevelInfo).Error("inboxsweep failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	vals := &flagValues{}
	root := &cobra.Command{
		Use:           "inboxsweep",
		Short:         "Archive and mark as read old messages in a Gmail folder",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildOptions(cmd.Flags(), vals)
			if err != nil {
				return err
			}
			if vals.cpuProfile != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(vals.cpuProfile), profile.Quiet).Stop()
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, opts, cmd.OutOrStdout(), openClient)
		},
	}
	bindFlags(root.Flags(), vals)
	root.PersistentFlags().StringVar(&vals.envFile, "env-file", ".env", "optional KEY=value file loaded before flags are resolved")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		return config.LoadEnv(vals.envFile)
	}
	root.AddCommand(newSampleConfigCmd())
	return root
}

func bindFlags(fs *pflag.FlagSet, vals *flagValues) {
	d := config.DefaultOptions()
	fs.StringVar(&vals.configFile, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	fs.StringVar(&vals.cpuProfile, "cpu-profile", "", "write a CPU profile into this directory")
	fs.StringVar(&vals.folder, "folder", string(d.Sweep.Folder), "label id of the folder to sweep")
	fs.IntVar(&vals.age, "age", d.Sweep.MinAgeDays, "only touch messages at least this many days old (0 disables)")
	fs.BoolVar(&vals.starred, "starred", d.Sweep.KeepStarred, "leave starred messages alone")
	fs.BoolVarP(&vals.verbose, "verbose", "v", d.Sweep.Verbose, "report skipped messages and log at debug level")
	fs.BoolVar(&vals.archive, "archive", d.Sweep.Archive, "remove matched messages from the inbox")
	fs.BoolVar(&vals.markRead, "mark-read", d.Sweep.MarkAsRead, "mark matched messages as read")
	fs.StringArrayVar(&vals.labels, "label", nil, "only touch messages carrying this user label (repeatable)")
	fs.BoolVar(&vals.dryRun, "dry-run", d.Sweep.DryRun, "report matches without modifying anything")
	fs.IntVar(&vals.pageSize, "page-size", d.Sweep.PageSize, "messages.list page size (max 500)")
	fs.IntVar(&vals.rps, "rps", d.RPS, "max requests per second (0 disables pacing)")
	fs.StringVar(&vals.authDir, "auth-dir", "", "directory holding credentials.json and cached tokens (default $"+config.EnvAuthDir+" or ~/.inboxsweep)")
	fs.StringVar(&vals.jsonPath, "json", "", "also write a JSON run summary to this relative path")
}

// buildOptions layers defaults, the config file and explicitly set flags, in
// that order. Labels from the file and the flags accumulate.
func buildOptions(fs *pflag.FlagSet, vals *flagValues) (config.Options, error) {
	opts := config.DefaultOptions()

	path := vals.configFile
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	if path != "" {
		file, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		file.Apply(&opts)
	}

	if fs.Changed("folder") {
		opts.Sweep.Folder = gmail.LabelID(vals.folder)
	}
	if fs.Changed("age") {
		opts.Sweep.MinAgeDays = vals.age
	}
	if fs.Changed("starred") {
		opts.Sweep.KeepStarred = vals.starred
	}
	if fs.Changed("verbose") {
		opts.Sweep.Verbose = vals.verbose
	}
	if fs.Changed("archive") {
		opts.Sweep.Archive = vals.archive
	}
	if fs.Changed("mark-read") {
		opts.Sweep.MarkAsRead = vals.markRead
	}
	opts.Sweep.LabelFilter = append(opts.Sweep.LabelFilter, vals.labels...)
	if fs.Changed("dry-run") {
		opts.Sweep.DryRun = vals.dryRun
	}
	if fs.Changed("page-size") {
		opts.Sweep.PageSize = vals.pageSize
	}
	if fs.Changed("rps") {
		opts.RPS = vals.rps
	}
	if fs.Changed("auth-dir") {
		opts.AuthDir = vals.authDir
	}
	if fs.Changed("json") {
		opts.JSONPath = vals.jsonPath
	}

	opts.Sweep = opts.Sweep.Normalize()
	return opts, nil
}

type clientFactory func(ctx context.Context, authDir string, scope runtime.Scope) (gmail.Client, error)

func openClient(ctx context.Context, authDir string, scope runtime.Scope) (gmail.Client, error) {
	return runtime.NewGmailClient(ctx, authDir, scope)
}

func run(ctx context.Context, opts config.Options, out io.Writer, newClient clientFactory) error {
	level := slog.LevelInfo
	if opts.Sweep.Verbose {
		level = slog.LevelDebug
	}
	logger := runtime.DefaultLogger(level)

	if err := opts.Sweep.Validate(); err != nil {
		if errors.Is(err, sweep.ErrNoAction) {
			logger.WarnContext(ctx, "nothing to do", "error", err)
			return nil
		}
		return fmt.Errorf("validate options: %w", err)
	}

	scope := runtime.ScopeModify
	if opts.Sweep.DryRun {
		scope = runtime.ScopeReadonly
	}
	client, err := newClient(ctx, opts.AuthDir, scope)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	var limiter rate.Limiter = rate.Unlimited{}
	if opts.RPS > 0 {
		limiter = rate.NewTokenBucket(opts.RPS)
	}

	printer := report.NewPrinter(out, opts.Sweep.ActionDescription(), opts.Sweep.DryRun)
	svc := sweep.NewService(client, limiter, logger, printer)

	_, runErr := svc.Run(ctx, opts.Sweep)
	if runErr != nil {
		runErr = fmt.Errorf("run sweep: %w", runErr)
	}
	if opts.JSONPath != "" {
		if err = report.WriteJSON(printer.Result(), opts.JSONPath); err != nil {
			return errors.Join(runErr, fmt.Errorf("write run summary: %w", err))
		}
	}
	if runErr != nil {
		return runErr
	}
	if err = printer.Err(); err != nil {
		return err
	}
	return nil
}

func newSampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print a YAML config file with every key set to its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := config.Sample().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
