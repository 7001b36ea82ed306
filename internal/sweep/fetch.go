package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

const subjectHeader = "Subject"

// Summary is the part of a message the filters look at.
type Summary struct {
	ID       gmail.MessageID
	Received time.Time
	Labels   []gmail.LabelID
	Subject  string // display only; falls back to the id
}

// HasLabel reports whether the message carries id.
func (s Summary) HasLabel(id gmail.LabelID) bool {
	for _, l := range s.Labels {
		if l == id {
			return true
		}
	}
	return false
}

// FetchSummary retrieves the metadata of a single message.
func FetchSummary(ctx context.Context, client gmail.Client, id gmail.MessageID) (Summary, error) {
	msg, err := client.GetMessage(ctx, id)
	if err != nil {
		return Summary{}, fmt.Errorf("get message %s: %w", id, err)
	}
	return summarize(id, msg), nil
}

func summarize(id gmail.MessageID, msg gmail.Message) Summary {
	if msg.ID != "" {
		id = msg.ID
	}
	return Summary{
		ID:       id,
		Received: time.UnixMilli(msg.InternalDate).Local(),
		Labels:   msg.LabelIDs,
		Subject:  subjectOf(id, msg.Headers),
	}
}

func subjectOf(id gmail.MessageID, headers []gmail.Header) string {
	for _, h := range headers {
		if h.Name == subjectHeader {
			return h.Value
		}
	}
	return string(id)
}
