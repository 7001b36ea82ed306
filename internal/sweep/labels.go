package sweep

import (
	"context"
	"fmt"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

// LabelTable maps user label ids to their names. System labels are not
// included; they are addressed by their fixed ids.
type LabelTable map[gmail.LabelID]string

// Name returns the name of a user label.
func (t LabelTable) Name(id gmail.LabelID) (string, bool) {
	name, ok := t[id]
	return name, ok
}

// ResolveLabels builds the label table from every user label on the account.
func ResolveLabels(ctx context.Context, client gmail.Client) (LabelTable, error) {
	labels, err := client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	table := make(LabelTable, len(labels))
	for _, l := range labels {
		if l.Type != gmail.LabelTypeUser {
			continue
		}
		table[l.ID] = l.Name
	}
	return table, nil
}
