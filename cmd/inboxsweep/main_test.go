package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/inboxsweep/internal/config"
	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/runtime"
)

type stubMailbox struct {
	messages []gmail.Message
	modified []gmail.MessageID
}

func (s *stubMailbox) List(context.Context, gmail.LabelID, string, int) (gmail.ListPage, error) {
	page := gmail.ListPage{}
	for _, m := range s.messages {
		page.IDs = append(page.IDs, m.ID)
	}
	return page, nil
}

func (s *stubMailbox) GetMessage(_ context.Context, id gmail.MessageID) (gmail.Message, error) {
	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return gmail.Message{}, gmail.ErrDataShape
}

func (s *stubMailbox) ListLabels(context.Context) ([]gmail.Label, error) { return nil, nil }

func (s *stubMailbox) Modify(_ context.Context, id gmail.MessageID, _ gmail.ModifyOps) error {
	s.modified = append(s.modified, id)
	return nil
}

func parse(t *testing.T, args ...string) (config.Options, error) {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	fs := pflag.NewFlagSet("inboxsweep", pflag.ContinueOnError)
	vals := &flagValues{}
	bindFlags(fs, vals)
	require.NoError(t, fs.Parse(args))
	return buildOptions(fs, vals)
}

func TestBuildOptionsDefaults(t *testing.T) {
	opts, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, gmail.LabelInbox, opts.Sweep.Folder)
	assert.Equal(t, 30, opts.Sweep.MinAgeDays)
	assert.True(t, opts.Sweep.Archive)
	assert.True(t, opts.Sweep.MarkAsRead)
	assert.False(t, opts.Sweep.KeepStarred)
	assert.Equal(t, 4, opts.RPS)
	assert.Empty(t, opts.Sweep.LabelFilter)
}

func TestBuildOptionsFlagsOverrideFileAndLabelsAccumulate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inboxsweep.yml")
	require.NoError(t, os.WriteFile(path, []byte("age: 90\narchive: false\nlabels: [promos]\nrps: 2\n"), 0o600))

	opts, err := parse(t, "--config", path, "--age", "7", "--label", "newsletters", "--label", "promos", "-v")
	require.NoError(t, err)
	assert.Equal(t, 7, opts.Sweep.MinAgeDays, "flag beats file")
	assert.False(t, opts.Sweep.Archive, "file beats default")
	assert.Equal(t, 2, opts.RPS)
	assert.True(t, opts.Sweep.Verbose)
	assert.Equal(t, []string{"promos", "newsletters"}, opts.Sweep.LabelFilter)
}

func TestBuildOptionsNegativeAgeClampsToZero(t *testing.T) {
	opts, err := parse(t, "--age=-5")
	require.NoError(t, err)
	assert.Equal(t, 0, opts.Sweep.MinAgeDays)
}

func TestBuildOptionsBadConfigFile(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func fixedFactory(mb *stubMailbox, scopes *[]runtime.Scope) clientFactory {
	return func(_ context.Context, _ string, scope runtime.Scope) (gmail.Client, error) {
		*scopes = append(*scopes, scope)
		return mb, nil
	}
}

func TestRunArchivesOldMessages(t *testing.T) {
	old := time.Now().AddDate(0, 0, -60).UnixMilli()
	mb := &stubMailbox{messages: []gmail.Message{
		{ID: "a", InternalDate: old, Headers: []gmail.Header{{Name: "Subject", Value: "Invoice"}}},
	}}
	var scopes []runtime.Scope
	opts := config.DefaultOptions()
	opts.RPS = 0
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), opts, &out, fixedFactory(mb, &scopes)))
	assert.Equal(t, []gmail.MessageID{"a"}, mb.modified)
	assert.Equal(t, []runtime.Scope{runtime.ScopeModify}, scopes)
	assert.Contains(t, out.String(), "Invoice marked as read and archived.")
	assert.Contains(t, out.String(), "Total: 1 e-mails found, 1 marked as read and archived.")
}

func TestRunDryRunUsesReadonlyScope(t *testing.T) {
	mb := &stubMailbox{messages: []gmail.Message{
		{ID: "a", InternalDate: time.Now().AddDate(0, 0, -60).UnixMilli()},
	}}
	var scopes []runtime.Scope
	opts := config.DefaultOptions()
	opts.RPS = 0
	opts.Sweep.DryRun = true
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), opts, &out, fixedFactory(mb, &scopes)))
	assert.Empty(t, mb.modified)
	assert.Equal(t, []runtime.Scope{runtime.ScopeReadonly}, scopes)
	assert.True(t, strings.HasPrefix(out.String(), "1 e-mails found in INBOX."))
	assert.Contains(t, out.String(), "[dry-run] a marked as read and archived.")
}

func TestRunWithoutActionIsNotAnError(t *testing.T) {
	var scopes []runtime.Scope
	opts := config.DefaultOptions()
	opts.Sweep.Archive = false
	opts.Sweep.MarkAsRead = false

	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}, fixedFactory(&stubMailbox{}, &scopes)))
	assert.Empty(t, scopes, "no session opened")
}

func TestRunWritesJSONSummary(t *testing.T) {
	t.Chdir(t.TempDir())
	var scopes []runtime.Scope
	opts := config.DefaultOptions()
	opts.RPS = 0
	opts.JSONPath = "run.json"

	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}, fixedFactory(&stubMailbox{}, &scopes)))
	raw, err := os.ReadFile("run.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"folder": "INBOX"`)
}

func TestSampleConfigCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sample-config", "--env-file", filepath.Join(t.TempDir(), ".env")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "age: 30")
	assert.Contains(t, out.String(), "labels:")
}
