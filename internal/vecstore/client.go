package vecstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// RetryPolicy is the tiered upsert retry policy: MaxAttempts with
// exponential backoff, then recursive halving down to MinChunk points.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MinChunk    int
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 4
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = 250 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 5 * time.Second
	}
	if p.MinChunk <= 0 {
		p.MinChunk = 16
	}
	return p
}

// Client wraps a Transport with the collection lifecycle, per-call
// timeouts, and the resilient upsert. Safe for concurrent use.
type Client struct {
	transport  Transport
	collection string
	timeout    time.Duration
	retry      RetryPolicy
	logger     *zap.Logger

	onRetry func()
	onSplit func()
}

// NewClient creates a vector index client bound to one collection.
func NewClient(t Transport, collection string, timeout time.Duration, retry RetryPolicy, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		transport:  t,
		collection: collection,
		timeout:    timeout,
		retry:      retry.withDefaults(),
		logger:     logger,
	}
}

// WithRetryHooks installs observers for retry and chunk-split events.
func (c *Client) WithRetryHooks(onRetry, onSplit func()) *Client {
	c.onRetry = onRetry
	c.onSplit = onSplit
	return c
}

// Collection returns the bound collection name.
func (c *Client) Collection() string { return c.collection }

// EnsureCollection prepares the collection for ingestion. A fresh run
// (recreate=true) wipes and recreates it; a resumed run requires it to
// already exist, because recreating would orphan the committed prefix.
func (c *Client) EnsureCollection(ctx context.Context, dim, segmentCount int, recreate bool) error {
	if segmentCount <= 0 {
		segmentCount = 2
	}
	spec := CollectionSpec{
		Name:         c.collection,
		Dimension:    dim,
		VectorNames:  []string{domain.TextVectorName, domain.IngredientVectorName},
		SegmentCount: segmentCount,
	}
	return c.ensureCollection(ctx, spec, recreate)
}

func (c *Client) ensureCollection(ctx context.Context, spec CollectionSpec, recreate bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exists, err := c.transport.CollectionExists(ctx, spec.Name)
	switch {
	case errors.Is(err, ErrExistsCheckUnsupported):
		if !recreate {
			return fmt.Errorf("cannot verify collection %q on resume: %w", spec.Name, err)
		}
		// Unconditional recreate yields the same clean collection.
		c.logger.Info("exists-check unsupported, recreating collection unconditionally",
			zap.String("collection", spec.Name))
		exists = true
	case err != nil:
		return err
	}

	if !recreate {
		if !exists {
			return fmt.Errorf("collection %q: %w", spec.Name, domain.ErrCollectionMissing)
		}
		return nil
	}

	if exists {
		if err := c.transport.DeleteCollection(ctx, spec.Name); err != nil {
			return err
		}
	}
	return c.transport.CreateCollection(ctx, spec)
}

// UpsertResilient writes points with the tiered retry policy: retry the
// full set with backoff, then halve recursively so one poison point cannot
// sink a whole batch. An exhausted chunk is fatal to the caller.
func (c *Client) UpsertResilient(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	return c.upsertChunk(ctx, points)
}

func (c *Client) upsertChunk(ctx context.Context, points []Point) error {
	err := c.upsertWithRetries(ctx, points)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	if len(points) > c.retry.MinChunk {
		half := len(points) / 2
		c.logger.Warn("splitting failed upsert chunk",
			zap.Int("size", len(points)),
			zap.Error(err),
		)
		if c.onSplit != nil {
			c.onSplit()
		}
		if err := c.upsertChunk(ctx, points[:half]); err != nil {
			return err
		}
		return c.upsertChunk(ctx, points[half:])
	}

	return fmt.Errorf("upsert chunk of %d points exhausted retries: %w", len(points), err)
}

func (c *Client) upsertWithRetries(ctx context.Context, points []Point) error {
	var lastErr error
	backoff := c.retry.BaseBackoff

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.transport.Upsert(attemptCtx, c.collection, points)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return err
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		c.logger.Warn("upsert attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("points", len(points)),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if c.onRetry != nil {
			c.onRetry()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.retry.MaxBackoff {
			backoff = c.retry.MaxBackoff
		}
	}
	return lastErr
}

// Search runs one similarity search. Query-time failures are not retried
// here; the caller surfaces them as upstream faults.
func (c *Client) Search(
	ctx context.Context, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	hits, err := c.transport.Search(ctx, c.collection, vectorName, vector, pred, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorSearchUpstream, err)
	}
	return hits, nil
}

// Close releases the underlying transport connections.
func (c *Client) Close() error {
	return c.transport.Close()
}
