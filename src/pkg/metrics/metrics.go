package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scope = "github.com/daniilvolkov/pagecache/src/bufferpool"

// PoolMetrics counts buffer pool traffic. A nil *PoolMetrics is valid and
// records nothing, so the pool works without a configured meter provider.
type PoolMetrics struct {
	hits       metric.Int64Counter
	misses     metric.Int64Counter
	evictions  metric.Int64Counter
	writeBacks metric.Int64Counter
}

func NewPoolMetrics() (*PoolMetrics, error) {
	meter := otel.Meter(scope)

	hits, err := meter.Int64Counter(
		"pagecache.pool.hits",
		metric.WithDescription("page requests served from a resident frame"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"pagecache.pool.misses",
		metric.WithDescription("page requests that went to disk"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"pagecache.pool.evictions",
		metric.WithDescription("frames reclaimed through the replacer"),
	)
	if err != nil {
		return nil, err
	}

	writeBacks, err := meter.Int64Counter(
		"pagecache.pool.write_backs",
		metric.WithDescription("dirty pages written to disk before frame reuse"),
	)
	if err != nil {
		return nil, err
	}

	return &PoolMetrics{
		hits:       hits,
		misses:     misses,
		evictions:  evictions,
		writeBacks: writeBacks,
	}, nil
}

func (p *PoolMetrics) Hit() {
	if p == nil {
		return
	}
	p.hits.Add(context.Background(), 1)
}

func (p *PoolMetrics) Miss() {
	if p == nil {
		return
	}
	p.misses.Add(context.Background(), 1)
}

func (p *PoolMetrics) Eviction() {
	if p == nil {
		return
	}
	p.evictions.Add(context.Background(), 1)
}

func (p *PoolMetrics) WriteBack() {
	if p == nil {
		return
	}
	p.writeBacks.Add(context.Background(), 1)
}
