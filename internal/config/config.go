// Package config loads the engine's recognized configuration options
// from an ini-style file via goconfig.
package config

import (
	"fmt"
	"strconv"

	"github.com/jaredwilkening/goconfig/config"

	"github.com/shockdb/seqidx/internal/scanner"
)

// Options holds the engine's recognized configuration. IDTransform,
// Scanner, and Classifier have no ini representation (they are code,
// not data) and can only be set programmatically.
type Options struct {
	Glob        string
	IDTransform scanner.IDTransform
	Scanner     scanner.Scanner
	Classifier  scanner.Classifier
	MaxOpen     int
	Reindex     bool
	Lenient     bool
	StoreArgs   string
	IndexName   string
	Clean       bool
	Debug       bool
}

// Default returns the documented defaults.
func Default() Options {
	return Options{Glob: "*", MaxOpen: 32}
}

// Load reads path (an ini file under an [Engine] section) and overlays
// overrides on top of it, which in turn overlay the defaults. A zero
// value in overrides means "use the file's value, or the default";
// override fields are applied last so explicit struct fields always win
// over the file.
func Load(path string, overrides Options) (Options, error) {
	opts := Default()
	if path != "" {
		c, err := config.ReadDefault(path)
		if err != nil {
			return opts, fmt.Errorf("config: reading %s: %w", path, err)
		}
		applyFile(&opts, c)
	}
	applyOverrides(&opts, overrides)
	return opts, nil
}

func applyFile(opts *Options, c *config.Config) {
	if v, err := c.String("Engine", "glob"); err == nil && v != "" {
		opts.Glob = v
	}
	if v, err := c.String("Engine", "max_open"); err == nil && v != "" {
		if n, perr := strconv.Atoi(v); perr == nil {
			opts.MaxOpen = n
		}
	}
	if v, err := c.String("Engine", "reindex"); err == nil && v != "" {
		opts.Reindex, _ = strconv.ParseBool(v)
	}
	if v, err := c.String("Engine", "store_args"); err == nil && v != "" {
		opts.StoreArgs = v
	}
	if v, err := c.String("Engine", "index_name"); err == nil && v != "" {
		opts.IndexName = v
	}
	if v, err := c.String("Engine", "clean"); err == nil && v != "" {
		opts.Clean, _ = strconv.ParseBool(v)
	}
	if v, err := c.String("Engine", "debug"); err == nil && v != "" {
		opts.Debug, _ = strconv.ParseBool(v)
	}
	if v, err := c.String("Engine", "lenient"); err == nil && v != "" {
		opts.Lenient, _ = strconv.ParseBool(v)
	}
}

func applyOverrides(opts *Options, o Options) {
	if o.Glob != "" {
		opts.Glob = o.Glob
	}
	if o.IDTransform != nil {
		opts.IDTransform = o.IDTransform
	}
	if o.Scanner != nil {
		opts.Scanner = o.Scanner
	}
	if o.Classifier != nil {
		opts.Classifier = o.Classifier
	}
	if o.Lenient {
		opts.Lenient = true
	}
	if o.MaxOpen != 0 {
		opts.MaxOpen = o.MaxOpen
	}
	if o.Reindex {
		opts.Reindex = true
	}
	if o.StoreArgs != "" {
		opts.StoreArgs = o.StoreArgs
	}
	if o.IndexName != "" {
		opts.IndexName = o.IndexName
	}
	if o.Clean {
		opts.Clean = true
	}
	if o.Debug {
		opts.Debug = true
	}
}
