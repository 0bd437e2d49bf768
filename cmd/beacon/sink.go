package main

import (
	"github.com/spf13/cobra"

	"critical-images-beacon/internal/infrastructure/env"
	"critical-images-beacon/internal/infrastructure/sink"
)

func NewSinkCmd(envService *env.EnvService) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "sink",
		Short: "Run a local endpoint that logs received beacons",
		Long: `sink accepts beacon POSTs on any path, logs the reported page, options hash
and critical image hashes, and answers 204. Nothing is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sink.NewServer(sink.Config{Addr: addr}).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envService.GetWithDefault(env.KeySinkAddr, ":8080"), "Listen address")
	return cmd
}
