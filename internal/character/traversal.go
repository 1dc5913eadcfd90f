package character

import (
	"context"
	"net/url"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/potterdb"
)

// traverse walks pages 1..last sequentially and returns every normalized
// summary. Any failure discards the accumulated result.
func traverse(ctx context.Context, api CharacterAPI, filters url.Values, size int, onPage func(page, last int)) ([]Summary, error) {
	all := make([]Summary, 0)
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err, page)
		}

		result, err := api.ListCharacters(ctx, potterdb.ListOptions{
			Page:    page,
			Size:    size,
			Filters: filters,
		})
		if err != nil {
			return nil, err
		}

		for _, record := range result.Records {
			all = append(all, NormalizeSummary(record))
		}
		if onPage != nil {
			onPage(page, result.LastPage)
		}

		if page >= result.LastPage {
			return all, nil
		}
	}
}

// contextError categorizes a canceled or expired context seen before page.
func contextError(err error, page int) error {
	category := errors.CategoryCancellation
	if errors.Is(err, context.DeadlineExceeded) {
		category = errors.CategoryTimeout
	}
	return errors.New(err).
		Component("character").
		Category(category).
		Context("page", page).
		Build()
}
