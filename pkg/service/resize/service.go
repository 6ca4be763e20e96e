// Package resize turns a request fragment into a processed object in the
// destination bucket and a redirect to it.
package resize

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multihash"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/resizeto/resizeto/internal/telemetry"
	"github.com/resizeto/resizeto/pkg/access"
	"github.com/resizeto/resizeto/pkg/config"
	"github.com/resizeto/resizeto/pkg/options"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
	"github.com/resizeto/resizeto/pkg/transformer"
)

var log = logging.Logger("resize")

type Service struct {
	cfg    config.Config
	store  objectstore.ObjectStore
	access access.Access
	index  variantstore.VariantIndex
	queue  QueueVariantFn
	log    *zap.SugaredLogger
}

// NewService validates cfg and creates a service reading originals from and
// writing variants to objects. An invalid configuration is returned as a
// [config.InvalidConfigError] before anything else is constructed.
func NewService(cfg config.Config, objects objectstore.ObjectStore, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &serviceOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	lg := o.log
	if lg == nil {
		lg = &log.SugaredLogger
		if cfg.Verbose {
			lg = verboseLogger(lg, zapcore.Lock(os.Stderr))
		}
	}
	// quiet unless verbose
	if !cfg.Verbose && lg.Desugar().Core().Enabled(zapcore.DebugLevel) {
		lg = lg.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
	}

	acc := o.access
	if acc == nil {
		var err error
		acc, err = access.FromURI(cfg.BaseURI())
		if err != nil {
			return nil, config.InvalidConfigError{Message: fmt.Sprintf("invalid base URI: %s", err)}
		}
	}

	lg.Debugw("service configured",
		"originals", cfg.Originals,
		"destination", cfg.Destination,
		"region", cfg.Region,
		"uri", cfg.BaseURI(),
		"signed", cfg.Signed,
	)

	return &Service{
		cfg:    cfg,
		store:  objects,
		access: acc,
		index:  o.index,
		queue:  o.queue,
		log:    lg,
	}, nil
}

func (s *Service) Config() config.Config {
	return s.cfg
}

// Process runs the pipeline for one request: parse the fragment, open the
// source, then transform and upload concurrently. It returns once the upload
// has completed or either side failed. Failures are returned as [*Error].
func (s *Service) Process(ctx context.Context, req Request) (*Session, error) {
	lg := s.log.With("fragment", req.Fragment)
	sess := &Session{
		request:     req,
		originals:   s.cfg.Originals,
		destination: s.cfg.Destination,
	}

	parsed, err := options.Parse(req.Fragment, s.cfg.Token, s.cfg.Signed)
	if err != nil {
		return nil, s.fail(lg, newError(StageParse, req.Fragment, err))
	}
	sess.parsed = parsed
	lg.Debugw("parsed fragment",
		"path", parsed.Path,
		"options", parsed.OptionsString,
		"collection", parsed.Collection.String(),
	)

	location, err := s.access.Location(req.Fragment)
	if err != nil {
		return nil, s.fail(lg, newError(StageParse, req.Fragment, fmt.Errorf("computing location: %w", err)))
	}
	sess.location = location

	src, err := s.store.Get(ctx, s.cfg.Originals, parsed.Path)
	if err != nil {
		return nil, s.fail(lg, newError(StageSource, req.Fragment, fmt.Errorf("getting source object '%s': %w", parsed.Path, err)))
	}
	body := src.Body()

	tr, err := transformer.New(parsed.Collection, parsed.Path)
	if err != nil {
		s.release(lg, body)
		return nil, s.fail(lg, newError(StageTransform, req.Fragment, err))
	}
	sess.transformer = tr

	up := sess.UploadParams()
	lg.Debugw("starting transform",
		"source", sess.SourceParams(),
		"source_type", src.ContentType(),
		"source_size", src.Size(),
		"upload", up,
	)

	pr, pw := io.Pipe()
	hash := sha256.New()
	count := &countingWriter{}

	var (
		output       objectstore.PutResult
		uploadErr    error
		transformErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.store.Put(gctx, up.Bucket, up.Key, up.ContentType, pr)
		if err != nil {
			uploadErr = err
			pr.CloseWithError(uploadAbortedError{err})
			return err
		}
		output = res
		return pr.Close()
	})
	g.Go(func() error {
		transformErr = tr.Transform(gctx, body, io.MultiWriter(pw, hash, count))
		pw.CloseWithError(transformErr)
		return transformErr
	})
	_ = g.Wait()
	s.release(lg, body, pr, pw)

	if transformErr != nil && !(uploadErr != nil && abortedByUpload(ctx, transformErr)) {
		return nil, s.fail(lg, newError(StageTransform, req.Fragment, transformErr))
	}
	if uploadErr != nil {
		return nil, s.fail(lg, newError(StageUpload, req.Fragment, fmt.Errorf("uploading '%s': %w", up.Key, uploadErr)))
	}

	digest, err := multihash.Encode(hash.Sum(nil), multihash.SHA2_256)
	if err != nil {
		return nil, s.fail(lg, newError(StageUpload, req.Fragment, fmt.Errorf("encoding digest: %w", err)))
	}
	sess.output = output
	sess.digest = digest
	sess.size = count.n

	lg.Debugw("uploaded variant",
		"etag", output.ETag,
		"stored", output.Location,
		"size", sess.size,
		"location", location.String(),
	)

	s.record(ctx, lg, sess)
	return sess, nil
}

// abortedByUpload reports whether a transform error is the consequence of
// the upload failing first rather than a failure of its own.
func abortedByUpload(ctx context.Context, err error) bool {
	if errors.As(err, &uploadAbortedError{}) {
		return true
	}
	return errors.Is(err, context.Canceled) && ctx.Err() == nil
}

// record hands the variant to the configured index and queue. The object is
// already stored, so failures here are reported but do not fail the request.
func (s *Service) record(ctx context.Context, lg *zap.SugaredLogger, sess *Session) {
	if s.index == nil && s.queue == nil {
		return
	}

	up := sess.UploadParams()
	v := variantstore.Variant{
		Key:         up.Key,
		Source:      sess.Path(),
		Bucket:      up.Bucket,
		ContentType: up.ContentType,
		Size:        sess.Size(),
		Digest:      sess.Digest(),
		ETag:        sess.Output().ETag,
		CreatedAt:   time.Now().UTC(),
	}

	if s.index != nil {
		if err := s.index.Put(ctx, v); err != nil {
			lg.Errorw("recording variant", "error", err)
			telemetry.ReportError(err)
		}
	}
	if s.queue != nil {
		if err := s.queue(ctx, v); err != nil {
			lg.Errorw("queueing variant", "error", err)
			telemetry.ReportError(err)
		}
	}
}

func (s *Service) fail(lg *zap.SugaredLogger, e *Error) *Error {
	kv := []any{"stage", string(e.Stage), "kind", e.Kind.String(), "error", e.Err}
	if e.Kind == KindInternal {
		lg.Errorw("processing failed", kv...)
	} else {
		lg.Warnw("processing failed", kv...)
	}
	return e
}

// release closes every stream of an invocation. Close errors do not change
// the outcome.
func (s *Service) release(lg *zap.SugaredLogger, closers ...io.Closer) {
	var errs error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		lg.Warnw("releasing streams", "error", errs)
	}
}

// verboseLogger lets entries below the level of lg through to w for this
// service only. The shared subsystem level is left alone.
func verboseLogger(lg *zap.SugaredLogger, w zapcore.WriteSyncer) *zap.SugaredLogger {
	base := lg.Desugar().Core()
	debug := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		w,
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return !base.Enabled(l) }),
	)
	return lg.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, debug)
	}))
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
