// Package project ties a loaded config to the pipeline: it compiles the configured Go
// packages, opens the cache, and collects the markup documents to match.
package project

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/razortag/pkg/cache"
	"github.com/walteh/razortag/pkg/config"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/symbols"
	"gitlab.com/tozd/go/errors"
)

type Project struct {
	Config *config.Config
	fs     afero.Fs
}

// Open loads the config at path, or the first default config file in dir when path is
// empty. With neither, the defaults apply with dir as the module directory.
func Open(ctx context.Context, fs afero.Fs, dir, path string) (*Project, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		found, ok, err := config.Find(fs, dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			cfg := config.Default()
			cfg.Dir = dir
			logger.Debug().Str("dir", dir).Msg("no config file, using defaults")
			return &Project{Config: cfg, fs: fs}, nil
		}
		path = found
	}

	cfg, err := config.Load(fs, path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("config", path).Str("dir", cfg.Dir).Msg("loaded config")
	return &Project{Config: cfg, fs: fs}, nil
}

// Engine builds a pipeline engine from the config. The cache store is only attached when
// the config enables one.
func (p *Project) Engine() *pipeline.Engine {
	opts := pipeline.Options{
		Prefix: p.Config.Prefix,
		Jobs:   p.Config.Jobs,
		Cohost: p.Config.Cohost,
		Kinds:  p.Config.ProducerKinds(),
	}
	if dir := p.Config.CacheDir(); dir != "" {
		opts.Store = cache.NewStore(p.fs, dir)
	}
	return pipeline.New(opts)
}

// Compile loads the configured packages with go/packages.
func (p *Project) Compile(ctx context.Context) (*symbols.Compilation, error) {
	c, err := symbols.LoadGoPackages(ctx, p.Config.Dir, p.Config.Packages...)
	if err != nil {
		return nil, errors.Errorf("compiling %s: %w", p.Config.Dir, err)
	}
	return c, nil
}

// Snapshot restores the collection cached under key, or compiles and runs discovery when
// key is empty. Discovery build errors come back with the snapshot.
func (p *Project) Snapshot(ctx context.Context, e *pipeline.Engine, key string) (*pipeline.Snapshot, error) {
	if key != "" {
		sum, err := descriptor.ParseChecksum(key)
		if err != nil {
			return nil, err
		}
		return e.Restore(ctx, sum)
	}

	c, err := p.Compile(ctx)
	if err != nil {
		return nil, err
	}
	snap, _, err := e.Discover(ctx, c)
	return snap, err
}

// Documents reads every file under the module directory matched by patterns, or by the
// configured document globs when patterns is empty. Paths are relative to the module
// directory, sorted, and listed once.
func (p *Project) Documents(ctx context.Context, patterns ...string) ([]pipeline.Document, error) {
	if len(patterns) == 0 {
		patterns = p.Config.Documents
	}

	root := afero.NewIOFS(afero.NewBasePathFs(p.fs, p.Config.Dir))

	var paths []string
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(root, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	docs := make([]pipeline.Document, 0, len(paths))
	for _, rel := range paths {
		content, err := afero.ReadFile(p.fs, filepath.Join(p.Config.Dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.Errorf("reading document: %w", err)
		}
		docs = append(docs, pipeline.Document{Path: rel, Content: content})
	}

	zerolog.Ctx(ctx).Debug().Strs("patterns", patterns).Int("documents", len(docs)).Msg("collected documents")
	return docs, nil
}

// Flags are the options every command takes to locate a project.
type Flags struct {
	Dir    string
	Config string
}

// Open resolves Dir, defaulting to the working directory, and opens the project there.
func (f *Flags) Open(ctx context.Context, fs afero.Fs) (*Project, error) {
	dir := f.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving project dir: %w", err)
	}
	return Open(ctx, fs, dir, f.Config)
}
