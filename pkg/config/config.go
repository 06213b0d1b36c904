// Package config loads razortag project files.
//
// The same schema is accepted as HCL, YAML or TOML, picked by file extension:
//
//	# razortag.hcl
//	dir       = "${cwd}/app"
//	packages  = ["./..."]
//	documents = ["**/*.razor"]
//	prefix    = "th:"
//	jobs      = 4
//	cohost    = true
//	producers = ["component", "bind", "event-handler"]
//
//	cache {
//	  dir = ".razortag/cache"
//	}
package config

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are looked up, in order, when no config path is given.
var DefaultFiles = []string{"razortag.hcl", "razortag.yaml", "razortag.yml", "razortag.toml"}

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	// Dir is the Go module directory packages are loaded from.
	Dir string `hcl:"dir,optional" yaml:"dir,omitempty" toml:"dir,omitempty"`
	// Packages are go/packages patterns, relative to Dir.
	Packages []string `hcl:"packages,optional" yaml:"packages,omitempty" toml:"packages,omitempty" validate:"required,min=1,dive,required"`
	// Documents are doublestar globs of markup files to match, relative to Dir.
	Documents []string `hcl:"documents,optional" yaml:"documents,omitempty" toml:"documents,omitempty" validate:"dive,required,glob"`

	Prefix string `hcl:"prefix,optional" yaml:"prefix,omitempty" toml:"prefix,omitempty" validate:"tagprefix"`
	Jobs   int    `hcl:"jobs,optional" yaml:"jobs,omitempty" toml:"jobs,omitempty" validate:"gte=0,lte=1024"`
	Cohost bool   `hcl:"cohost,optional" yaml:"cohost,omitempty" toml:"cohost,omitempty"`

	// Producers restricts discovery to these producer kinds; empty means all.
	Producers []string `hcl:"producers,optional" yaml:"producers,omitempty" toml:"producers,omitempty" validate:"dive,producer"`

	Cache *CacheBlock `hcl:"cache,block" yaml:"cache,omitempty" toml:"cache,omitempty"`
}

type CacheBlock struct {
	Dir      string `hcl:"dir,attr" yaml:"dir" toml:"dir" validate:"required"`
	Disabled bool   `hcl:"disabled,optional" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
}

// Default is used when no config file exists.
func Default() *Config {
	return &Config{Dir: ".", Packages: []string{"./..."}}
}

// ProducerKinds parses Producers. Validate has already rejected unknown names.
func (c *Config) ProducerKinds() []producers.ProducerKind {
	var out []producers.ProducerKind
	for _, name := range c.Producers {
		if k, ok := producers.ParseProducerKind(name); ok {
			out = append(out, k)
		}
	}
	return out
}

// CacheDir returns the cache directory, empty when caching is off.
func (c *Config) CacheDir() string {
	if c.Cache == nil || c.Cache.Disabled {
		return ""
	}
	return c.Cache.Dir
}

// Find returns the first of DefaultFiles present in dir.
func Find(fs afero.Fs, dir string) (string, bool, error) {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		ok, err := afero.Exists(fs, p)
		if err != nil {
			return "", false, errors.Errorf("checking %s: %w", p, err)
		}
		if ok {
			return p, true, nil
		}
	}
	return "", false, nil
}

// Load reads, decodes and validates the config at path. Relative Dir and cache paths are
// resolved against the config file's directory.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	if len(cfg.Packages) == 0 {
		cfg.Packages = Default().Packages
	}

	base := filepath.Dir(path)
	if cfg.Dir == "" {
		cfg.Dir = base
	} else if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(base, cfg.Dir)
	}
	if cfg.Cache != nil && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(base, cfg.Cache.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte) (*Config, error) {
	var cfg Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}

	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Errorf("parsing TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("parsing TOML: unknown keys %v", undecoded)
		}

	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}
		cwd, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, errors.Errorf("resolving config dir: %w", err)
		}
		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"cwd": cty.StringVal(cwd),
			},
		}
		if diags := gohcl.DecodeBody(file.Body, ctx, &cfg); diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}

	default:
		return nil, errors.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range map[string]validator.Func{
		"producer": func(fl validator.FieldLevel) bool {
			_, ok := producers.ParseProducerKind(fl.Field().String())
			return ok
		},
		"glob": func(fl validator.FieldLevel) bool {
			return doublestar.ValidatePattern(fl.Field().String())
		},
		// tag helper prefixes are glued to tag names, so nothing a tag name can't hold
		"tagprefix": func(fl validator.FieldLevel) bool {
			return !strings.ContainsAny(fl.Field().String(), " \t\r\n<>/=\"'")
		},
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// Validate checks c and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, errors.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}
