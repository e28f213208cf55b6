// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cli

import (
	"github.com/creachadair/jdom/storage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFmtCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt [flags] FILE...",
		Short: "Print JSON files in compact form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			arena := storage.NewMonotonic(cfg.BlockSize, nil)
			defer arena.Release()

			var buf []byte
			for _, path := range args {
				v, _, err := parseFile(ctx, cfg, path, storage.Ref(arena))
				if err != nil {
					return errors.Wrap(err, path)
				}
				buf = append(v.AppendJSON(buf[:0]), '\n')
				v.Release()
				if _, err := cmd.OutOrStdout().Write(buf); err != nil {
					return err
				}
				arena.Release()
			}
			return nil
		},
	}
}
