package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"critical-images-beacon/internal/infrastructure/env"
)

func NewRootCmd(envService *env.EnvService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beacon",
		Short: "Critical image beacon for rendered pages",
		Long: `beacon loads pages in a headless browser (or a static layout engine),
detects the images whose top-left corner lies inside the initial viewport and
reports their pagespeed_url_hash values to a beacon endpoint with one
form-encoded POST per page.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewScanCmd(envService))
	cmd.AddCommand(NewSinkCmd(envService))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(env.NewEnvService()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
