package resize

import (
	"context"

	"go.uber.org/zap"

	"github.com/resizeto/resizeto/pkg/access"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

// QueueVariantFn announces a processed variant to downstream consumers.
type QueueVariantFn func(ctx context.Context, variant variantstore.Variant) error

type serviceOptions struct {
	log    *zap.SugaredLogger
	access access.Access
	index  variantstore.VariantIndex
	queue  QueueVariantFn
}

type Option func(*serviceOptions) error

// WithLogger sets the logger diagnostics are written to. The configured
// verbosity still applies.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *serviceOptions) error {
		o.log = log
		return nil
	}
}

// WithAccess overrides how the redirect location is computed. By default it
// is derived from the configured base URI.
func WithAccess(access access.Access) Option {
	return func(o *serviceOptions) error {
		o.access = access
		return nil
	}
}

// WithVariantIndex records every processed variant in idx.
func WithVariantIndex(idx variantstore.VariantIndex) Option {
	return func(o *serviceOptions) error {
		o.index = idx
		return nil
	}
}

func WithVariantQueue(queue QueueVariantFn) Option {
	return func(o *serviceOptions) error {
		o.queue = queue
		return nil
	}
}
