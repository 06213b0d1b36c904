package pipeline

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/razortag/pkg/binder"
	"github.com/walteh/razortag/pkg/markup"
	"github.com/walteh/razortag/pkg/position"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

type Document struct {
	Path    string
	Content []byte
}

// TagMatch is one tag of a document. Binding is nil for unbound tags.
type TagMatch struct {
	Tag markup.Tag
	// Range spans the tag's opening '<' and name.
	Range   position.Range
	Binding *binder.Binding
}

type DocumentMatch struct {
	Path string
	// Prefix is the tag helper prefix the document was matched with.
	Prefix string
	// Tags holds the bound tags in document order.
	Tags []TagMatch
	// Unbound holds the remaining tags, also in document order.
	Unbound []TagMatch
	// TagCount counts every start tag, bound or not.
	TagCount int
}

// MatchDocuments binds every document against snap. Documents run in parallel, bounded by
// Options.Jobs, and the result keeps the order of docs. A document that fails to parse
// fails the call.
func (e *Engine) MatchDocuments(ctx context.Context, snap *Snapshot, docs []Document) ([]DocumentMatch, error) {
	ctx = withRun(ctx, snap.RunID)
	out := make([]DocumentMatch, len(docs))

	jobs := e.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := matchDocument(gctx, snap.Binder, doc)
			if err != nil {
				return errors.Errorf("matching %s: %w", doc.Path, err)
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func matchDocument(ctx context.Context, b *binder.Binder, doc Document) (DocumentMatch, error) {
	parsed, err := markup.Parse(doc.Content)
	if err != nil {
		return DocumentMatch{}, err
	}

	if parsed.Prefix != "" && parsed.Prefix != b.Prefix() {
		b = binder.NewBinder(parsed.Prefix, b.Descriptors())
	}

	lines := position.NewIndex(doc.Content)
	m := DocumentMatch{Path: doc.Path, Prefix: b.Prefix(), TagCount: len(parsed.Tags)}
	for _, tag := range parsed.Tags {
		tm := TagMatch{
			Tag:   tag,
			Range: lines.Range(position.RawPosition{Offset: tag.Offset, Text: "<" + tag.Name}),
		}
		tm.Binding = binder.PreferSpecificBinds(b.GetBinding(tag))
		if tm.Binding == nil {
			m.Unbound = append(m.Unbound, tm)
			continue
		}
		m.Tags = append(m.Tags, tm)
	}

	zerolog.Ctx(ctx).Trace().
		Str("document", doc.Path).
		Int("tags", m.TagCount).
		Int("bound", len(m.Tags)).
		Msg("matched document")
	return m, nil
}
