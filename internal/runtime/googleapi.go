// Package runtime adapts *gmail.Service to the small client interface the
// sweep engine depends on.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bradenaw/juniper/xslices"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	gc "github.com/joshsymonds/inboxsweep/internal/gmail"
)

const user = "me"

type googleClient struct{ svc *gmail.Service }

var _ gc.Client = (*googleClient)(nil)

func NewGoogleAPIClient(svc *gmail.Service) *googleClient { return &googleClient{svc} }

func (g *googleClient) List(
	ctx context.Context,
	folder gc.LabelID,
	pageToken string,
	pageSize int,
) (gc.ListPage, error) {
	call := g.svc.Users.Messages.List(user).LabelIds(string(folder)).MaxResults(int64(pageSize))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.ListPage{}, classify("list messages", err)
	}
	return gc.ListPage{
		IDs:           xslices.Map(res.Messages, func(m *gmail.Message) gc.MessageID { return gc.MessageID(m.Id) }),
		NextPageToken: res.NextPageToken,
	}, nil
}

func (g *googleClient) GetMessage(ctx context.Context, id gc.MessageID) (gc.Message, error) {
	msg, err := g.svc.Users.Messages.Get(user, string(id)).
		Format("metadata").
		MetadataHeaders("Subject").
		Context(ctx).
		Do()
	if err != nil {
		return gc.Message{}, classify("get message", err)
	}
	if msg.InternalDate == 0 {
		return gc.Message{}, fmt.Errorf("%w: message %s has no internal date", gc.ErrDataShape, id)
	}
	out := gc.Message{
		ID:           id,
		InternalDate: msg.InternalDate,
		LabelIDs:     toLabelIDs(msg.LabelIds),
	}
	if msg.Payload != nil {
		out.Headers = xslices.Map(msg.Payload.Headers, func(h *gmail.MessagePartHeader) gc.Header {
			return gc.Header{Name: h.Name, Value: h.Value}
		})
	}
	return out, nil
}

func (g *googleClient) ListLabels(ctx context.Context) ([]gc.Label, error) {
	res, err := g.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, classify("list labels", err)
	}
	return xslices.Map(res.Labels, func(l *gmail.Label) gc.Label {
		return gc.Label{ID: gc.LabelID(l.Id), Name: l.Name, Type: l.Type}
	}), nil
}

func (g *googleClient) Modify(ctx context.Context, id gc.MessageID, ops gc.ModifyOps) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    toStrings(ops.AddLabels),
		RemoveLabelIds: toStrings(ops.RemoveLabels),
	}
	if _, err := g.svc.Users.Messages.Modify(user, string(id), req).Context(ctx).Do(); err != nil {
		return classify("modify message", err)
	}
	return nil
}

// classify maps a client library error onto the package sentinels so callers
// can tell a rejected session from any other failure.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %w", gc.ErrAuth, op, err)
		}
		return fmt.Errorf("%w: %s: %w", gc.ErrTransport, op, err)
	}
	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		return fmt.Errorf("%w: %s: %w", gc.ErrAuth, op, err)
	}
	return fmt.Errorf("%w: %s: %w", gc.ErrTransport, op, err)
}

func toLabelIDs(in []string) []gc.LabelID {
	return xslices.Map(in, func(s string) gc.LabelID { return gc.LabelID(s) })
}

func toStrings(in []gc.LabelID) []string {
	if len(in) == 0 {
		return nil
	}
	return xslices.Map(in, func(l gc.LabelID) string { return string(l) })
}
