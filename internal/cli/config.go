// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cli

import (
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/jdom"
	kitlog "github.com/go-kit/log"
	"github.com/pkg/errors"
)

// Flag names, which are also the keys of the configuration file.
const (
	flagMaxDepth       = "max-depth"
	flagBlockSize      = "block-size"
	flagChunk          = "chunk"
	flagTrailingCommas = "trailing-commas"
	flagComments       = "comments"
	flagJWCC           = "jwcc"
	flagJobs           = "jobs"
	flagMetrics        = "metrics"
)

// Config holds the settings shared by the commands.
type Config struct {
	MaxDepth       int  `toml:"max-depth"`
	BlockSize      int  `toml:"block-size"`
	Chunk          int  `toml:"chunk"`
	TrailingCommas bool `toml:"trailing-commas"`
	Comments       bool `toml:"comments"`
	JWCC           bool `toml:"jwcc"`
	Jobs           int  `toml:"jobs"`
	Metrics        bool `toml:"metrics"`

	path string // configuration file, if any
}

func defaultConfig() Config {
	return Config{
		MaxDepth:  jdom.DefaultMaxDepth,
		BlockSize: 64 << 10,
		Chunk:     4096,
		Jobs:      runtime.GOMAXPROCS(0),
	}
}

// load reads c.path, if set, and applies each setting it defines unless
// changed reports that the corresponding flag was set explicitly.
func (c *Config) load(changed func(string) bool) error {
	if c.path == "" {
		return c.check()
	}
	var file Config
	md, err := toml.DecodeFile(c.path, &file)
	if err != nil {
		return errors.Wrapf(err, "read config %q", c.path)
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		return errors.Errorf("config %q: unknown setting %q", c.path, keys[0].String())
	}
	apply := func(key string, set func()) {
		if md.IsDefined(key) && !changed(key) {
			set()
		}
	}
	apply(flagMaxDepth, func() { c.MaxDepth = file.MaxDepth })
	apply(flagBlockSize, func() { c.BlockSize = file.BlockSize })
	apply(flagChunk, func() { c.Chunk = file.Chunk })
	apply(flagTrailingCommas, func() { c.TrailingCommas = file.TrailingCommas })
	apply(flagComments, func() { c.Comments = file.Comments })
	apply(flagJWCC, func() { c.JWCC = file.JWCC })
	apply(flagJobs, func() { c.Jobs = file.Jobs })
	apply(flagMetrics, func() { c.Metrics = file.Metrics })
	return c.check()
}

func (c *Config) check() error {
	switch {
	case c.Chunk <= 0:
		return errors.Errorf("invalid chunk size %d", c.Chunk)
	case c.BlockSize < 0:
		return errors.Errorf("invalid block size %d", c.BlockSize)
	case c.Jobs <= 0:
		return errors.Errorf("invalid job count %d", c.Jobs)
	}
	return nil
}

// options returns parser options for c that log to l.
func (c *Config) options(l kitlog.Logger) *jdom.Options {
	return &jdom.Options{
		MaxDepth:            c.MaxDepth,
		AllowTrailingCommas: c.TrailingCommas,
		AllowComments:       c.Comments,
		Logger:              l,
	}
}
