package gmail

import "context"

// Client is the narrow Gmail surface required by inboxsweep.
type Client interface {
	List(ctx context.Context, folder LabelID, pageToken string, pageSize int) (ListPage, error)
	GetMessage(ctx context.Context, id MessageID) (Message, error)
	ListLabels(ctx context.Context) ([]Label, error)
	Modify(ctx context.Context, id MessageID, ops ModifyOps) error
}
