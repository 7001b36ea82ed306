// Package config loads run settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/sweep"
)

const (
	EnvAuthDir    = "INBOXSWEEP_AUTH_DIR"
	EnvConfigFile = "INBOXSWEEP_CONFIG"

	defaultRPS     = 4
	defaultAuthDir = ".inboxsweep"
)

// Options is everything one invocation needs.
type Options struct {
	Sweep    sweep.Config
	RPS      int // 0 disables pacing
	AuthDir  string
	JSONPath string
}

// DefaultOptions returns the built-in defaults, with the auth directory taken
// from the environment when set.
func DefaultOptions() Options {
	return Options{
		Sweep:   sweep.DefaultConfig(),
		RPS:     defaultRPS,
		AuthDir: DefaultAuthDir(),
	}
}

// DefaultAuthDir resolves $INBOXSWEEP_AUTH_DIR, falling back to
// $HOME/.inboxsweep.
func DefaultAuthDir() string {
	if dir := os.Getenv(EnvAuthDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultAuthDir
	}
	return filepath.Join(home, defaultAuthDir)
}

// File is the on-disk configuration. Unset keys leave the defaults alone.
type File struct {
	Folder   *string  `yaml:"folder,omitempty"`
	Age      *int     `yaml:"age,omitempty"`
	Starred  *bool    `yaml:"starred,omitempty"`
	Archive  *bool    `yaml:"archive,omitempty"`
	MarkRead *bool    `yaml:"mark_read,omitempty"`
	Labels   []string `yaml:"labels,omitempty"`
	Verbose  *bool    `yaml:"verbose,omitempty"`
	DryRun   *bool    `yaml:"dry_run,omitempty"`
	PageSize *int     `yaml:"page_size,omitempty"`
	RPS      *int     `yaml:"rps,omitempty"`
	AuthDir  *string  `yaml:"auth_dir,omitempty"`
	JSON     *string  `yaml:"json,omitempty"`
}

// Load reads a config file. Unknown keys are rejected.
func Load(path string) (File, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var f File
	if err = yaml.UnmarshalStrict(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Apply overlays the keys set in f onto opts. Labels accumulate.
func (f File) Apply(opts *Options) {
	if f.Folder != nil {
		opts.Sweep.Folder = gmail.LabelID(*f.Folder)
	}
	if f.Age != nil {
		opts.Sweep.MinAgeDays = *f.Age
	}
	if f.Starred != nil {
		opts.Sweep.KeepStarred = *f.Starred
	}
	if f.Archive != nil {
		opts.Sweep.Archive = *f.Archive
	}
	if f.MarkRead != nil {
		opts.Sweep.MarkAsRead = *f.MarkRead
	}
	opts.Sweep.LabelFilter = append(opts.Sweep.LabelFilter, f.Labels...)
	if f.Verbose != nil {
		opts.Sweep.Verbose = *f.Verbose
	}
	if f.DryRun != nil {
		opts.Sweep.DryRun = *f.DryRun
	}
	if f.PageSize != nil {
		opts.Sweep.PageSize = *f.PageSize
	}
	if f.RPS != nil {
		opts.RPS = *f.RPS
	}
	if f.AuthDir != nil {
		opts.AuthDir = expandHome(*f.AuthDir)
	}
	if f.JSON != nil {
		opts.JSONPath = *f.JSON
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Sample returns a File with every key set to its default.
func Sample() File {
	d := DefaultOptions()
	folder := string(d.Sweep.Folder)
	authDir := "~/" + defaultAuthDir
	return File{
		Folder:   &folder,
		Age:      &d.Sweep.MinAgeDays,
		Starred:  &d.Sweep.KeepStarred,
		Archive:  &d.Sweep.Archive,
		MarkRead: &d.Sweep.MarkAsRead,
		Labels:   []string{"newsletters"},
		Verbose:  &d.Sweep.Verbose,
		DryRun:   &d.Sweep.DryRun,
		PageSize: &d.Sweep.PageSize,
		RPS:      &d.RPS,
		AuthDir:  &authDir,
	}
}

// Marshal renders f as YAML.
func (f File) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// LoadEnv reads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}
