package sweep

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

const defaultMinAgeDays = 30

// ErrNoAction is returned when neither archiving nor marking as read is
// enabled. Such a run would not change anything and stops before any call.
var ErrNoAction = errors.New("nothing to do: enable archive or mark-as-read")

// Config is the immutable policy for a single run.
type Config struct {
	Folder      gmail.LabelID
	MinAgeDays  int // 0 disables the age filter
	KeepStarred bool
	Archive     bool
	MarkAsRead  bool
	LabelFilter []string // user label names; empty disables the label filter
	Verbose     bool
	DryRun      bool
	PageSize    int
}

// DefaultConfig mirrors the CLI defaults.
func DefaultConfig() Config {
	return Config{
		Folder:     gmail.LabelInbox,
		MinAgeDays: defaultMinAgeDays,
		Archive:    true,
		MarkAsRead: true,
		PageSize:   gmail.MaxPageSize,
	}
}

// Normalize clamps out-of-range values: a negative age becomes 0, an invalid
// page size becomes the maximum, and blank or repeated label names are dropped.
func (c Config) Normalize() Config {
	if c.MinAgeDays < 0 {
		c.MinAgeDays = 0
	}
	if c.PageSize <= 0 || c.PageSize > gmail.MaxPageSize {
		c.PageSize = gmail.MaxPageSize
	}
	c.Folder = gmail.LabelID(strings.TrimSpace(string(c.Folder)))
	if c.Folder == "" {
		c.Folder = gmail.LabelInbox
	}
	seen := make(map[string]struct{}, len(c.LabelFilter))
	labels := make([]string, 0, len(c.LabelFilter))
	for _, name := range c.LabelFilter {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		labels = append(labels, name)
	}
	c.LabelFilter = labels
	return c
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if !c.Archive && !c.MarkAsRead {
		result = multierror.Append(result, ErrNoAction)
	}
	if c.MinAgeDays < 0 {
		result = multierror.Append(result, fmt.Errorf("age must not be negative, got %d", c.MinAgeDays))
	}
	if c.PageSize < 1 || c.PageSize > gmail.MaxPageSize {
		result = multierror.Append(
			result,
			fmt.Errorf("page size must be between 1 and %d, got %d", gmail.MaxPageSize, c.PageSize),
		)
	}
	if strings.TrimSpace(string(c.Folder)) == "" {
		result = multierror.Append(result, errors.New("folder must not be empty"))
	}
	return result.ErrorOrNil()
}

// Mutation builds the label changes applied to every matched message.
// The add set is always empty.
func (c Config) Mutation() gmail.ModifyOps {
	var ops gmail.ModifyOps
	if c.MarkAsRead {
		ops.RemoveLabels = append(ops.RemoveLabels, gmail.LabelUnread)
	}
	if c.Archive {
		ops.RemoveLabels = append(ops.RemoveLabels, gmail.LabelInbox)
	}
	return ops
}

// ActionDescription describes the mutation, e.g. "marked as read and archived".
func (c Config) ActionDescription() string {
	var parts []string
	if c.MarkAsRead {
		parts = append(parts, "marked as read")
	}
	if c.Archive {
		parts = append(parts, "archived")
	}
	return strings.Join(parts, " and ")
}
