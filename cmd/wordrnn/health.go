package main

import (
	"fmt"

	"github.com/example/go-wordrnn/internal/server"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server's /health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.ListenAddr
			}

			h, err := server.ProbeHTTP(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("probe %s: %w", addr, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (version %s)\n", h.Status, h.Version)
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address to probe (default: --listen-addr)")

	return cmd
}
