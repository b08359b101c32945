package vecstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// failoverTransport tries the primary transport and permanently swaps to
// the secondary when the primary reports a connectivity error. The swap is
// one-way for the process lifetime and invisible to callers.
type failoverTransport struct {
	mu        sync.Mutex
	primary   Transport
	secondary Transport
	active    Transport
	swapped   bool
	logger    *zap.Logger
}

// NewFailoverTransport decorates primary with a connectivity-classified
// fallback to secondary.
func NewFailoverTransport(primary, secondary Transport, logger *zap.Logger) Transport {
	return &failoverTransport{
		primary:   primary,
		secondary: secondary,
		active:    primary,
		logger:    logger,
	}
}

func (f *failoverTransport) current() Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// swap switches to the secondary transport. Returns the transport to retry
// the failed call on, or nil when already swapped.
func (f *failoverTransport) swap(cause error) Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.swapped {
		return nil
	}
	f.swapped = true
	f.active = f.secondary
	f.logger.Warn("primary vector transport unreachable, switching to fallback",
		zap.String("primary", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(cause),
	)
	return f.secondary
}

// call runs op on the active transport, swapping once on a connectivity
// error and retrying the same op on the fallback.
func (f *failoverTransport) call(op func(t Transport) error) error {
	t := f.current()
	err := op(t)
	if err == nil || t != f.primary || !isConnectivityError(err) {
		return err
	}
	next := f.swap(err)
	if next == nil {
		return err
	}
	return op(next)
}

func (f *failoverTransport) Name() string { return f.current().Name() }

func (f *failoverTransport) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := f.call(func(t Transport) error {
		var opErr error
		exists, opErr = t.CollectionExists(ctx, name)
		return opErr
	})
	return exists, err
}

func (f *failoverTransport) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	return f.call(func(t Transport) error { return t.CreateCollection(ctx, spec) })
}

func (f *failoverTransport) DeleteCollection(ctx context.Context, name string) error {
	return f.call(func(t Transport) error { return t.DeleteCollection(ctx, name) })
}

func (f *failoverTransport) Upsert(ctx context.Context, collection string, points []Point) error {
	return f.call(func(t Transport) error { return t.Upsert(ctx, collection, points) })
}

func (f *failoverTransport) Search(
	ctx context.Context, collection, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	var hits []domain.VectorHit
	err := f.call(func(t Transport) error {
		var opErr error
		hits, opErr = t.Search(ctx, collection, vectorName, vector, pred, limit)
		return opErr
	})
	return hits, err
}

func (f *failoverTransport) Close() error {
	// Both ends own real connections; close both.
	errPrimary := f.primary.Close()
	errSecondary := f.secondary.Close()
	if errPrimary != nil {
		return errPrimary
	}
	return errSecondary
}
