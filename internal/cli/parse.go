// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cli

import (
	"context"
	"os"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// parseFile parses the contents of path into a value using sp, writing the
// input to the parser in chunks of the configured size.
func parseFile(ctx context.Context, cfg *Config, path string, sp storage.Pointer) (value.Value, jdom.Location, error) {
	logger := loggerFromContext(ctx).With("file", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, jdom.Location{}, errors.Wrap(err, "read input")
	}
	if cfg.JWCC {
		data, err = hujson.Standardize(data)
		if err != nil {
			return value.Value{}, jdom.Location{}, errors.Wrap(err, "standardize JWCC")
		}
		logger.Debug("standardized JWCC input", "bytes", len(data))
	}

	p := jdom.NewParser(sp, cfg.options(kitLogger(logger)))
	defer p.Close()
	for len(data) != 0 {
		if err := ctx.Err(); err != nil {
			return value.Value{}, jdom.Location{}, err
		}
		n := min(cfg.Chunk, len(data))
		if _, err := p.Write(data[:n]); err != nil {
			return value.Value{}, jdom.Location{}, err
		}
		data = data[n:]
	}
	if err := p.Finish(); err != nil {
		return value.Value{}, jdom.Location{}, err
	}
	v, err := p.Result()
	return v, p.Location(), err
}
