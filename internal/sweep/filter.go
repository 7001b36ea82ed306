package sweep

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

// Predicate is one independent filter. Evaluate returns whether the message
// passes and, when it does not, a short reason for diagnostics.
type Predicate interface {
	Name() string
	Evaluate(msg Summary, now time.Time) (bool, string)
}

// Decision is the outcome of running every predicate against one message.
type Decision struct {
	Matched bool
	Reasons []string // one per failed predicate, in predicate order
}

// StarredPredicate protects starred messages when Keep is set.
type StarredPredicate struct {
	Keep bool
}

func (StarredPredicate) Name() string { return "starred" }

func (p StarredPredicate) Evaluate(msg Summary, _ time.Time) (bool, string) {
	if !p.Keep || !msg.HasLabel(gmail.LabelStarred) {
		return true, ""
	}
	return false, "starred"
}

// AgePredicate matches messages at least MinDays old. Zero disables it.
type AgePredicate struct {
	MinDays int
}

func (AgePredicate) Name() string { return "age" }

func (p AgePredicate) Evaluate(msg Summary, now time.Time) (bool, string) {
	if p.MinDays <= 0 {
		return true, ""
	}
	cutoff := now.AddDate(0, 0, -p.MinDays)
	if !msg.Received.After(cutoff) {
		return true, ""
	}
	return false, fmt.Sprintf("newer than %d days", p.MinDays)
}

// LabelPredicate matches messages carrying at least one of the named user
// labels. Ids missing from the table never match. An empty filter always holds.
type LabelPredicate struct {
	Names map[string]struct{}
	Table LabelTable
}

// NewLabelPredicate builds a LabelPredicate for the given label names.
func NewLabelPredicate(names []string, table LabelTable) LabelPredicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return LabelPredicate{Names: set, Table: table}
}

func (LabelPredicate) Name() string { return "label" }

func (p LabelPredicate) Evaluate(msg Summary, _ time.Time) (bool, string) {
	if len(p.Names) == 0 {
		return true, ""
	}
	for _, id := range msg.Labels {
		name, ok := p.Table.Name(id)
		if !ok {
			continue
		}
		if _, want := p.Names[name]; want {
			return true, ""
		}
	}
	return false, "no label in [" + strings.Join(p.sortedNames(), ", ") + "]"
}

func (p LabelPredicate) sortedNames() []string {
	names := make([]string, 0, len(p.Names))
	for n := range p.Names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildPredicates returns the predicate chain for cfg in its fixed order:
// starred, age, label.
func BuildPredicates(cfg Config, table LabelTable) []Predicate {
	return []Predicate{
		StarredPredicate{Keep: cfg.KeepStarred},
		AgePredicate{MinDays: cfg.MinAgeDays},
		NewLabelPredicate(cfg.LabelFilter, table),
	}
}

// Evaluate runs every predicate; the message matches only if all hold.
func Evaluate(msg Summary, predicates []Predicate, now time.Time) Decision {
	var reasons []string
	for _, p := range predicates {
		if ok, reason := p.Evaluate(msg, now); !ok {
			reasons = append(reasons, reason)
		}
	}
	return Decision{Matched: len(reasons) == 0, Reasons: reasons}
}
