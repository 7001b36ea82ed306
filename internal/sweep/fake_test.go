package sweep

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

// fakeMailbox serves pages and messages from memory and applies modify calls
// to the stored label sets.
type fakeMailbox struct {
	pages    []gmail.ListPage
	messages map[gmail.MessageID]*gmail.Message
	labels   []gmail.Label

	listTokens  []string
	listSizes   []int
	listFolders []gmail.LabelID
	getCalls    []gmail.MessageID
	labelCalls  int
	modifyCalls []modifyCall
	listErr     error
	labelsErr   error
	getErr      map[gmail.MessageID]error
	modifyErr   map[gmail.MessageID]error
}

type modifyCall struct {
	ID  gmail.MessageID
	Ops gmail.ModifyOps
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{messages: map[gmail.MessageID]*gmail.Message{}}
}

func (f *fakeMailbox) calls() int {
	return len(f.listTokens) + len(f.getCalls) + f.labelCalls + len(f.modifyCalls)
}

// add stores a message and places it on a single page.
func (f *fakeMailbox) add(msg gmail.Message) {
	f.messages[msg.ID] = &msg
	if len(f.pages) == 0 {
		f.pages = []gmail.ListPage{{}}
	}
	f.pages[0].IDs = append(f.pages[0].IDs, msg.ID)
}

func (f *fakeMailbox) List(
	ctx context.Context,
	folder gmail.LabelID,
	pageToken string,
	pageSize int,
) (gmail.ListPage, error) {
	_ = ctx
	f.listTokens = append(f.listTokens, pageToken)
	f.listSizes = append(f.listSizes, pageSize)
	f.listFolders = append(f.listFolders, folder)
	if f.listErr != nil {
		return gmail.ListPage{}, f.listErr
	}
	if len(f.pages) == 0 {
		return gmail.ListPage{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeMailbox) GetMessage(ctx context.Context, id gmail.MessageID) (gmail.Message, error) {
	_ = ctx
	f.getCalls = append(f.getCalls, id)
	if err := f.getErr[id]; err != nil {
		return gmail.Message{}, err
	}
	msg, ok := f.messages[id]
	if !ok {
		return gmail.Message{ID: id}, nil
	}
	out := *msg
	out.LabelIDs = slices.Clone(msg.LabelIDs)
	return out, nil
}

func (f *fakeMailbox) ListLabels(ctx context.Context) ([]gmail.Label, error) {
	_ = ctx
	f.labelCalls++
	if f.labelsErr != nil {
		return nil, f.labelsErr
	}
	return f.labels, nil
}

func (f *fakeMailbox) Modify(ctx context.Context, id gmail.MessageID, ops gmail.ModifyOps) error {
	_ = ctx
	f.modifyCalls = append(f.modifyCalls, modifyCall{ID: id, Ops: ops})
	if err := f.modifyErr[id]; err != nil {
		return err
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil
	}
	kept := msg.LabelIDs[:0]
	for _, l := range msg.LabelIDs {
		if !slices.Contains(ops.RemoveLabels, l) {
			kept = append(kept, l)
		}
	}
	msg.LabelIDs = kept
	for _, l := range ops.AddLabels {
		if !slices.Contains(msg.LabelIDs, l) {
			msg.LabelIDs = append(msg.LabelIDs, l)
		}
	}
	return nil
}

type recordingReporter struct {
	found     []int
	matched   []Summary
	dryRuns   []bool
	skipped   []Summary
	reasons   [][]string
	summaries []Stats
}

func (r *recordingReporter) Found(_ gmail.LabelID, count int) { r.found = append(r.found, count) }

func (r *recordingReporter) Matched(msg Summary, dryRun bool) {
	r.matched = append(r.matched, msg)
	r.dryRuns = append(r.dryRuns, dryRun)
}

func (r *recordingReporter) Skipped(msg Summary, reasons []string) {
	r.skipped = append(r.skipped, msg)
	r.reasons = append(r.reasons, reasons)
}

func (r *recordingReporter) Summary(stats Stats) { r.summaries = append(r.summaries, stats) }

var fixedNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.Local)

func daysAgo(days int) int64 {
	return fixedNow.AddDate(0, 0, -days).UnixMilli()
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
