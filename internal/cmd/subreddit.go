package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reddit-client/internal/models"
	"reddit-client/pkg/reddit"
)

func newSubredditCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "subreddit <name>",
		Short:   "Show subreddit details",
		Example: "  redditctl subreddit rust",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := c.reddit.Subreddit(args[0]).Get(cmd.Context())
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(sub.Info())
			}
			renderSubreddits(c.out, []*reddit.Subreddit{sub})
			return nil
		},
	}
}

func newTopCmd(c *cli) *cobra.Command {
	var (
		listing string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "top <subreddit>",
		Short: "List the first page of a subreddit listing",
		Example: `  redditctl top rust
  redditctl top golang --listing new -n 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := c.reddit.Subreddit(args[0])

			var fetch func(context.Context) ([]*reddit.Post, error)
			switch listing {
			case "top":
				fetch = link.Top
			case "hot":
				fetch = link.Hot
			case "new":
				fetch = link.New
			default:
				return fmt.Errorf("unknown listing %q (top|hot|new)", listing)
			}

			posts, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			posts = head(posts, limit)

			if c.json() {
				return c.writeJSON(infos[models.PostData](posts))
			}
			renderPosts(c.out, posts)
			return nil
		},
	}

	cmd.Flags().StringVar(&listing, "listing", "top", "top|hot|new")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n posts")
	return cmd
}
