// Package pipeline is the top-level entry point: discover the tag helpers of a
// compilation, then bind the tags of markup documents against them.
//
// With Options.Cohost set the engine remembers its last snapshot. A rerun whose merged
// collection is Equal to the previous one reports changed=false and hands back the
// previous binder, so callers can skip re-matching.
package pipeline

import (
	"context"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/walteh/razortag/pkg/binder"
	"github.com/walteh/razortag/pkg/cache"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/discovery"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/symbols"
	"gitlab.com/tozd/go/errors"
)

var ErrNotCached = errors.New("collection not in cache")

type Options struct {
	// Prefix is the tag helper prefix tags must carry. A document's own
	// @tagHelperPrefix directive overrides it.
	Prefix string
	// Jobs bounds parallel reference discovery and document matching; <= 0 is GOMAXPROCS.
	Jobs int
	// Cohost keeps the last snapshot between Discover calls.
	Cohost bool
	// Kinds restricts the producers; empty means all of them.
	Kinds []producers.ProducerKind
	// Store, when set, receives every changed merged collection.
	Store *cache.Store
}

// Snapshot is the outcome of one discovery run.
type Snapshot struct {
	RunID  xid.ID
	Result *discovery.Result
	Binder *binder.Binder
}

// Checksum identifies the merged collection, and is the snapshot's cache key.
func (s *Snapshot) Checksum() descriptor.Checksum {
	return cache.Key(s.Binder.Descriptors())
}

type Engine struct {
	opts       Options
	discoverer *discovery.Discoverer

	mu   sync.Mutex
	last *Snapshot
}

func New(opts Options) *Engine {
	return &Engine{
		opts:       opts,
		discoverer: discovery.New(producers.NewRegistry(opts.Kinds...), opts.Jobs),
	}
}

func withRun(ctx context.Context, id xid.ID) context.Context {
	return zerolog.Ctx(ctx).With().Str("run", id.String()).Logger().WithContext(ctx)
}

// Discover runs discovery over c. Build errors come back alongside a usable snapshot;
// only cancellation yields a nil snapshot.
func (e *Engine) Discover(ctx context.Context, c *symbols.Compilation) (*Snapshot, bool, error) {
	id := xid.New()
	ctx = withRun(ctx, id)
	logger := zerolog.Ctx(ctx)

	res, discoverErr := e.discoverer.Discover(ctx, c)
	if res == nil {
		return nil, false, discoverErr
	}

	snap := &Snapshot{RunID: id, Result: res}
	changed := true

	if e.opts.Cohost {
		e.mu.Lock()
		if e.last != nil && e.last.Binder.Descriptors().Equal(res.Merged) {
			snap.Binder = e.last.Binder
			changed = false
		}
		if snap.Binder == nil {
			snap.Binder = binder.NewBinder(e.opts.Prefix, res.Merged)
		}
		e.last = snap
		e.mu.Unlock()
	} else {
		snap.Binder = binder.NewBinder(e.opts.Prefix, res.Merged)
	}

	if changed && e.opts.Store != nil {
		if _, err := e.opts.Store.Put(ctx, res.Merged); err != nil {
			logger.Warn().Err(err).Msg("caching collection")
		}
	}

	logger.Debug().
		Bool("changed", changed).
		Str("checksum", snap.Checksum().Short()).
		Int("descriptors", res.Merged.Count()).
		Msg("discovery finished")

	return snap, changed, discoverErr
}

// Restore rebuilds a snapshot from the collection cached under key.
func (e *Engine) Restore(ctx context.Context, key descriptor.Checksum) (*Snapshot, error) {
	if e.opts.Store == nil {
		return nil, errors.Errorf("%w: no store configured", ErrNotCached)
	}
	id := xid.New()
	ctx = withRun(ctx, id)

	c, ok, err := e.opts.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrNotCached, key.Short())
	}

	zerolog.Ctx(ctx).Debug().Str("checksum", key.Short()).Int("descriptors", c.Count()).Msg("restored collection")
	return &Snapshot{
		RunID:  id,
		Result: &discovery.Result{Compilation: collection.Empty, References: collection.Empty, Merged: c},
		Binder: binder.NewBinder(e.opts.Prefix, c),
	}, nil
}
