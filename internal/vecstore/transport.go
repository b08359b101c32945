// Package vecstore is the vector index client. A Transport speaks one wire
// protocol to Qdrant (gRPC preferred, HTTP fallback); Client layers the
// tiered retry policy and collection lifecycle on top.
package vecstore

import (
	"context"
	"errors"
	"net"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// ErrExistsCheckUnsupported signals a backend without the collection
// exists-check capability. Callers fall back to unconditional recreation.
var ErrExistsCheckUnsupported = errors.New("collection exists-check not supported")

// Point is one index point: deterministic id, named unit vectors, and the
// payload mirror.
type Point struct {
	ID      int64
	Vectors map[string][]float32
	Payload domain.PointPayload
}

// CollectionSpec describes the collection to (re)create: every named vector
// field shares one dimension and cosine distance.
type CollectionSpec struct {
	Name         string
	Dimension    int
	VectorNames  []string
	SegmentCount int
}

// Transport is one wire protocol to the vector index.
type Transport interface {
	// Name identifies the transport in logs ("grpc", "http").
	Name() string
	// CollectionExists reports whether the collection exists. May return
	// ErrExistsCheckUnsupported.
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, spec CollectionSpec) error
	// DeleteCollection removes the collection; deleting an absent
	// collection is not an error.
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns hits ordered by descending score.
	Search(ctx context.Context, collection, vectorName string, vector []float32,
		pred filter.Predicate, limit int) ([]domain.VectorHit, error)
	Close() error
}

// isConnectivityError classifies errors that mean the endpoint itself is
// unreachable, as opposed to a request the endpoint rejected. Only these
// trigger the transport failover.
func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.Unavailable {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isRetryableError classifies transient transport failures for the tiered
// upsert retry. Context cancellation is never retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if isConnectivityError(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		}
	}
	return false
}
