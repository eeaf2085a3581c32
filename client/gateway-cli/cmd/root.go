package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	gwhttp "WebShop_AI/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

const defaultGateway = "http://localhost:8080"

// options holds the persistent flags shared by every subcommand.
type options struct {
	gateway string
	timeout time.Duration
}

func (o *options) client() *gwhttp.Client {
	return gwhttp.NewClient(gwhttp.ClientOptions{
		Timeout:          o.timeout,
		MaxResponseBytes: 4 << 20,
	})
}

func (o *options) url(path string) string {
	return strings.TrimRight(o.gateway, "/") + path
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "gateway-cli",
		Short:         "A CLI client to interact with the WebShop AI gateway",
		Long:          `A command-line interface for chatting with the WebShop agents and invoking them through the gateway.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.gateway, "gateway", envOr("GATEWAY_URL", defaultGateway), "gateway base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	rootCmd.AddCommand(newHealthCmd(opts))
	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newAgentCmd(opts))
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
