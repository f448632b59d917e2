package fetch

import (
	"context"
	"time"

	"github.com/nao1215/esgscan/internal/model"
	"golang.org/x/time/rate"
)

// Throttled enforces a minimum interval between fetches of the wrapped
// Fetcher. The first fetch is never delayed.
type Throttled struct {
	next    Fetcher
	limiter *rate.Limiter
}

// NewThrottled wraps next. A non-positive interval returns next unchanged.
func NewThrottled(next Fetcher, interval time.Duration) Fetcher {
	if interval <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Fetch waits for the limiter and then delegates.
func (t *Throttled) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, classify(ctx, rawURL, err, KindCancelled)
	}
	return t.next.Fetch(ctx, rawURL)
}
