package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"rootfind/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return server.ListenAndServe(cmd.Context(), addr, prometheus.NewRegistry())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}
