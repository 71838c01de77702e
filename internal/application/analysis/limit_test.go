package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

type slowProvider struct {
	fakeProvider
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowProvider) SummarizeDocument(ctx context.Context, doc domain.Document) (domain.Output, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return domain.Output{Text: "done"}, nil
}

func TestLimitProviders_CapsConcurrency(t *testing.T) {
	p := &slowProvider{fakeProvider: fakeProvider{name: "openai", configured: true}}
	limited := LimitProviders(map[domain.ProviderChoice]domain.Provider{domain.ChoicePrimary: p}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := limited[domain.ChoicePrimary].SummarizeDocument(context.Background(), domain.Document{Text: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, p.peak.Load(), int32(2))
	assert.Equal(t, "openai", limited[domain.ChoicePrimary].Name())
}

func TestLimitProviders_CanceledWaitIsUpstreamFailure(t *testing.T) {
	p := &fakeProvider{name: "openai", configured: true, out: domain.Output{Text: "x"}}
	limited := LimitProviders(map[domain.ProviderChoice]domain.Provider{domain.ChoicePrimary: p}, 1)

	// hold the only slot
	lp := limited[domain.ChoicePrimary].(*limitedProvider)
	require.NoError(t, lp.sem.Acquire(context.Background(), 1))
	defer lp.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lp.DescribeImage(ctx, domain.Image{Data: []byte{1}}, "")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.calls.Load())
}

func TestLimitProviders_ZeroIsUnlimited(t *testing.T) {
	m := map[domain.ProviderChoice]domain.Provider{domain.ChoicePrimary: &fakeProvider{name: "openai"}}
	assert.Equal(t, m, LimitProviders(m, 0))
}
