package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reddit-client/internal/feed"
)

func newFeedCmd(c *cli) *cobra.Command {
	var (
		interval time.Duration
		retries  int
		maxPosts int
	)

	cmd := &cobra.Command{
		Use:   "feed <subreddit>",
		Short: "Print new posts as they are submitted",
		Long: `feed polls a subreddit and prints every post submitted after it started,
one line per post, until interrupted.`,
		Example: "  redditctl feed all --interval 5s",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var opts []feed.Option
			if interval > 0 {
				opts = append(opts, feed.WithPollInterval(interval))
			}
			if cmd.Flags().Changed("retries") {
				opts = append(opts, feed.WithMaxRetries(retries))
			}

			f := c.reddit.Subreddit(args[0]).Feed(opts...)
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting feed for r/%s every %s...\n", args[0], f.PollInterval())

			seen := 0
			enc := json.NewEncoder(c.out)
			for p := range f.Start(ctx) {
				info := p.Info()
				if c.json() {
					if err := enc.Encode(info); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(c.out, "%s\t%s\t%s\n", info.CreatedUTC.Time().UTC().Format(time.RFC3339), info.Name, info.Title)
				}

				seen++
				if maxPosts > 0 && seen >= maxPosts {
					break
				}
			}
			return f.Err()
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from FEED_POLL_INTERVAL)")
	cmd.Flags().IntVar(&retries, "retries", feed.DefaultMaxRetries, "consecutive failed polls before giving up")
	cmd.Flags().IntVarP(&maxPosts, "max", "n", 0, "stop after n posts")
	return cmd
}
