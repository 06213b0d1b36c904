// Package discovery runs producers over a compilation and its references.
//
//	compilation assembly ──► static pass ──► public types ──┐
//	                                                         ├─► Result.Compilation ─┐
//	reference 0 ─┐                                           │                       ├─► Result.Merged
//	reference 1 ─┼─ (errgroup, bounded) ──► per assembly ────┴─► Result.References ──┘
//	reference n ─┘                           assembled in reference order
//
// Every type gets a fresh producers.Results that all producers write into in kind order;
// the batch is appended to the assembly's output in one step once every producer is done
// with the type. Cancellation is checked between types.
package discovery

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/symbols"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Resolver picks the producers that apply to a compilation. *producers.Registry is the
// usual implementation.
type Resolver interface {
	Resolve(ctx context.Context, c *symbols.Compilation) []producers.Producer
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, c *symbols.Compilation) []producers.Producer

func (f ResolverFunc) Resolve(ctx context.Context, c *symbols.Compilation) []producers.Producer {
	return f(ctx, c)
}

type Discoverer struct {
	resolver Resolver
	jobs     int
}

// New returns a Discoverer that walks at most jobs referenced assemblies at once. jobs <= 0
// means GOMAXPROCS.
func New(resolver Resolver, jobs int) *Discoverer {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &Discoverer{resolver: resolver, jobs: jobs}
}

type Result struct {
	// Compilation holds descriptors found in the compilation's own assembly.
	Compilation *collection.Collection
	// References holds descriptors found in referenced assemblies, in reference order.
	References *collection.Collection
	// Merged is Compilation followed by References.
	Merged *collection.Collection

	Skipped []producers.Skip
}

type assemblyResult struct {
	descriptors []*descriptor.TagHelperDescriptor
	skipped     []producers.Skip
	errs        error
}

func (r *assemblyResult) publish(batch *producers.Results) {
	r.descriptors = append(r.descriptors, batch.Descriptors...)
	r.skipped = append(r.skipped, batch.Skipped...)
}

// Discover produces the descriptors visible to c.
//
// Descriptors that fail to build do not stop discovery: the rest of the result is
// returned along with an error combining every build failure (see multierr.Errors).
// Cancellation returns a nil result and the context's error.
func (d *Discoverer) Discover(ctx context.Context, c *symbols.Compilation) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	ps := d.resolver.Resolve(ctx, c)

	own, err := discoverAssembly(ctx, ps, c.Assembly())
	if err != nil {
		return nil, errors.Errorf("discovering %s: %w", c.Assembly().Name, err)
	}

	refs := c.References()
	results := make([]assemblyResult, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.jobs)
	for i, ref := range refs {
		g.Go(func() error {
			r, err := discoverAssembly(gctx, ps, ref)
			if err != nil {
				return errors.Errorf("discovering %s: %w", ref.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs error
	multierr.AppendInto(&errs, own.errs)

	out := &Result{
		Compilation: collection.New(own.descriptors...),
		Skipped:     own.skipped,
	}
	refBuilder := collection.NewBuilder()
	for _, r := range results {
		refBuilder.AddAll(r.descriptors)
		out.Skipped = append(out.Skipped, r.skipped...)
		multierr.AppendInto(&errs, r.errs)
	}
	out.References = refBuilder.Build()
	out.Merged = collection.Merge(out.Compilation, out.References)

	logger.Debug().
		Str("assembly", c.Assembly().Name).
		Int("producers", len(ps)).
		Int("compilation", out.Compilation.Count()).
		Int("references", out.References.Count()).
		Int("skipped", len(out.Skipped)).
		Int("errors", len(multierr.Errors(errs))).
		Msg("discovered tag helpers")

	return out, errs
}

// discoverAssembly runs the static pass and then every public type of a. Build errors
// are collected on the result; the returned error is only ever the context's.
func discoverAssembly(ctx context.Context, ps []producers.Producer, a *symbols.Assembly) (assemblyResult, error) {
	var out assemblyResult

	for _, p := range ps {
		sp, ok := p.(producers.StaticProducer)
		if !ok {
			continue
		}
		var batch producers.Results
		if err := sp.AddStaticTagHelpers(ctx, a, &batch); err != nil {
			multierr.AppendInto(&out.errs, errors.Errorf("%s static tag helpers for %s: %w", p.Kind(), a.Name, err))
		}
		out.publish(&batch)
	}

	for _, t := range a.PublicTypes() {
		if err := ctx.Err(); err != nil {
			return assemblyResult{}, err
		}

		var batch producers.Results
		for _, p := range ps {
			tp, ok := p.(producers.TypeProducer)
			if !ok || !tp.IsCandidateType(t) {
				continue
			}
			if err := tp.AddTagHelpersForType(ctx, t, &batch); err != nil {
				multierr.AppendInto(&out.errs, errors.Errorf("%s tag helpers for %s: %w", p.Kind(), t.FullName(), err))
			}
		}
		out.publish(&batch)
	}

	return out, nil
}
