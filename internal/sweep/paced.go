package sweep

import (
	"context"
	"fmt"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
	"github.com/joshsymonds/inboxsweep/internal/rate"
)

// pacedClient waits on the limiter before every request.
type pacedClient struct {
	next    gmail.Client
	limiter rate.Limiter
}

func (p pacedClient) wait(ctx context.Context, operation string) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (p pacedClient) List(
	ctx context.Context,
	folder gmail.LabelID,
	pageToken string,
	pageSize int,
) (gmail.ListPage, error) {
	if err := p.wait(ctx, "rate limit messages"); err != nil {
		return gmail.ListPage{}, err
	}
	return p.next.List(ctx, folder, pageToken, pageSize)
}

func (p pacedClient) GetMessage(ctx context.Context, id gmail.MessageID) (gmail.Message, error) {
	if err := p.wait(ctx, "rate limit metadata"); err != nil {
		return gmail.Message{}, err
	}
	return p.next.GetMessage(ctx, id)
}

func (p pacedClient) ListLabels(ctx context.Context) ([]gmail.Label, error) {
	if err := p.wait(ctx, "rate limit labels"); err != nil {
		return nil, err
	}
	return p.next.ListLabels(ctx)
}

func (p pacedClient) Modify(ctx context.Context, id gmail.MessageID, ops gmail.ModifyOps) error {
	if err := p.wait(ctx, "rate limit modify"); err != nil {
		return err
	}
	return p.next.Modify(ctx, id, ops)
}

var _ gmail.Client = pacedClient{}
