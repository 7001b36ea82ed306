package sweep

import (
	"context"
	"fmt"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

// CollectIDs drains the paged listing of folder and returns every message id
// once, in the order first seen. An empty folder yields an empty slice.
func CollectIDs(
	ctx context.Context,
	client gmail.Client,
	folder gmail.LabelID,
	pageSize int,
) ([]gmail.MessageID, error) {
	if pageSize <= 0 || pageSize > gmail.MaxPageSize {
		pageSize = gmail.MaxPageSize
	}
	var (
		ids   []gmail.MessageID
		seen  = map[gmail.MessageID]struct{}{}
		token string
		pages int
	)
	for {
		page, err := client.List(ctx, folder, token, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list messages (page %d): %w", pages+1, err)
		}
		pages++
		for _, id := range page.IDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	return ids, nil
}
