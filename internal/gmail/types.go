package gmail

type MessageID string
type LabelID string

// System labels are addressed by fixed ids and never need name resolution.
const (
	LabelInbox   LabelID = "INBOX"
	LabelStarred LabelID = "STARRED"
	LabelUnread  LabelID = "UNREAD"
)

// LabelTypeUser marks account-defined labels in a labels.list response.
const LabelTypeUser = "user"

// MaxPageSize is the largest page messages.list will return.
const MaxPageSize = 500

type Header struct {
	Name  string
	Value string
}

// Message is the metadata view of a single message.
type Message struct {
	ID           MessageID
	InternalDate int64 // server receipt time, ms since epoch
	LabelIDs     []LabelID
	Headers      []Header
}

type Label struct {
	ID   LabelID
	Name string
	Type string // "system" or "user"
}

// ListPage is one page of a messages.list call.
type ListPage struct {
	IDs           []MessageID
	NextPageToken string
}

// ModifyOps is the body of a messages.modify call.
type ModifyOps struct {
	AddLabels    []LabelID
	RemoveLabels []LabelID
}

// Empty reports whether ops would leave a message untouched.
func (o ModifyOps) Empty() bool {
	return len(o.AddLabels) == 0 && len(o.RemoveLabels) == 0
}
