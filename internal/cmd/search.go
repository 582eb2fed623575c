package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
	"reddit-client/pkg/reddit"
)

type infoer[R any] interface{ Info() R }

func infos[R any, T infoer[R]](items []T) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, it.Info())
	}
	return out
}

func newSearchCmd(c *cli) *cobra.Command {
	var (
		sortFlag  string
		kind      string
		subreddit string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts, subreddits or users",
		Example: `  redditctl search pigeon --sort new
  redditctl search hands --subreddit pigeon
  redditctl search pigeon --type users --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := client.ParseSort(sortFlag)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			ctx := cmd.Context()

			switch kind {
			case "posts":
				var page *reddit.PostSearch
				if subreddit != "" {
					page, err = c.reddit.Subreddit(subreddit).Search(ctx, query, sort)
				} else {
					page, err = c.reddit.Search(ctx, query, sort)
				}
				if err != nil {
					return err
				}
				posts, err := page.Collect(ctx, limit)
				if err != nil {
					return err
				}
				if c.json() {
					return c.writeJSON(infos[models.PostData](posts))
				}
				renderPosts(c.out, posts)

			case "subreddits":
				page, err := c.reddit.SearchSubreddits(ctx, query, sort)
				if err != nil {
					return err
				}
				subs, err := page.Collect(ctx, limit)
				if err != nil {
					return err
				}
				if c.json() {
					return c.writeJSON(infos[models.SubredditData](subs))
				}
				renderSubreddits(c.out, subs)

			case "users":
				page, err := c.reddit.SearchUsers(ctx, query, sort)
				if err != nil {
					return err
				}
				users, err := page.Collect(ctx, limit)
				if err != nil {
					return err
				}
				if c.json() {
					return c.writeJSON(infos[models.UserData](users))
				}
				renderUsers(c.out, users)

			default:
				return fmt.Errorf("unknown search type %q (posts|subreddits|users)", kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(client.Relevance), "relevance|hot|top|new|comments")
	cmd.Flags().StringVar(&kind, "type", "posts", "what to search for: posts|subreddits|users")
	cmd.Flags().StringVarP(&subreddit, "subreddit", "r", "", "search posts inside one subreddit")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results, 0 walks every page")
	return cmd
}
