// Package cli implements portalctl, the operator tool for formatting
// values, previewing charts, submitting forms and poking the job queue.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	baseURL   string
	redisAddr string
	timeout   time.Duration
}

// NewRootCmd creates the portalctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operator tool for the fruit export portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("PORTAL_URL", "http://127.0.0.1:8080"), "Portal base URL for relative form actions (env: PORTAL_URL)")
	root.PersistentFlags().StringVar(&opts.redisAddr, "redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address for job commands (env: REDIS_ADDR)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Operation timeout")

	root.AddCommand(formatCmd())
	root.AddCommand(chartCmd())
	root.AddCommand(submitCmd(opts))
	root.AddCommand(jobsCmd(opts))
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
