package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reddit-client/internal/config"
	"reddit-client/internal/obs"
	"reddit-client/internal/ratelimit"
	"reddit-client/pkg/reddit"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// cli carries the flags and the client shared by every subcommand.
type cli struct {
	logLevel  string
	format    string
	rateLimit string

	out    io.Writer
	reddit *reddit.Reddit
}

// Execute runs redditctl until it finishes or receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "redditctl",
		Short: "Browse Reddit from the terminal",
		Long: `redditctl reads subreddits, posts, users and search results from Reddit.

Credentials in REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME and
REDDIT_PASSWORD (environment or .env) switch to the OAuth API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug|info|warn|error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVarP(&c.format, "output", "o", formatTable, "output format: table|json")
	root.PersistentFlags().StringVar(&c.rateLimit, "rate-limit", "", "rate limiting: off|batched|paced (default from RATE_LIMIT_MODE)")

	root.AddCommand(
		newSearchCmd(c),
		newSubredditCmd(c),
		newTopCmd(c),
		newUserCmd(c),
		newFeedCmd(c),
		newMeCmd(c),
		newReplyCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.format != formatTable && c.format != formatJSON {
		return fmt.Errorf("unsupported output format: %s", c.format)
	}
	c.out = cmd.OutOrStdout()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	var opts reddit.Options
	if c.rateLimit != "" {
		mode, err := ratelimit.ParseMode(c.rateLimit)
		if err != nil {
			return err
		}
		opts.Limiter = ratelimit.New(mode)
	}

	// logs go to stderr so output stays pipeable
	logger := obs.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	opts.Logger = &logger

	c.reddit, err = reddit.NewFromConfig(cmd.Context(), cfg, opts)
	return err
}

func (c *cli) json() bool { return c.format == formatJSON }

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Main runs Execute and exits non-zero on failure.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
