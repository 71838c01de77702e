package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	domain "github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

// limitedProvider caps concurrent outgoing calls across every provider that
// shares the same semaphore.
type limitedProvider struct {
	domain.Provider
	sem *semaphore.Weighted
}

// LimitProviders wraps each provider so that at most n calls run at once.
// n <= 0 returns the map unchanged.
func LimitProviders(providers map[domain.ProviderChoice]domain.Provider, n int64) map[domain.ProviderChoice]domain.Provider {
	if n <= 0 {
		return providers
	}
	sem := semaphore.NewWeighted(n)
	out := make(map[domain.ProviderChoice]domain.Provider, len(providers))
	for c, p := range providers {
		if p == nil {
			continue
		}
		out[c] = &limitedProvider{Provider: p, sem: sem}
	}
	return out
}

func (l *limitedProvider) DescribeImage(ctx context.Context, img domain.Image, focus string) (domain.Output, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return domain.Output{}, fmt.Errorf("%w: waiting for call slot: %w", domain.ErrUpstream, err)
	}
	defer l.sem.Release(1)
	return l.Provider.DescribeImage(ctx, img, focus)
}

func (l *limitedProvider) SummarizeDocument(ctx context.Context, doc domain.Document) (domain.Output, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return domain.Output{}, fmt.Errorf("%w: waiting for call slot: %w", domain.ErrUpstream, err)
	}
	defer l.sem.Release(1)
	return l.Provider.SummarizeDocument(ctx, doc)
}
