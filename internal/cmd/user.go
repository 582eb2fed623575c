package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reddit-client/internal/models"
	"reddit-client/pkg/reddit"
)

type userReport struct {
	User      models.UserData      `json:"user"`
	Submitted []models.PostData    `json:"submitted"`
	Comments  []models.CommentData `json:"comments"`
}

func newUserCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "user <name>",
		Short:   "Show a user with recent posts and comments",
		Example: "  redditctl user spez -n 5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			u, err := c.reddit.User(args[0]).Get(ctx)
			if err != nil {
				return err
			}
			posts, err := u.Submitted(ctx)
			if err != nil {
				return fmt.Errorf("submitted: %w", err)
			}
			comments, err := u.Comments(ctx)
			if err != nil {
				return fmt.Errorf("comments: %w", err)
			}
			posts = head(posts, limit)
			comments = head(comments, limit)

			if c.json() {
				return c.writeJSON(userReport{
					User:      u.Info(),
					Submitted: infos[models.PostData](posts),
					Comments:  infos[models.CommentData](comments),
				})
			}

			renderUsers(c.out, []*reddit.User{u})
			fmt.Fprintln(c.out, "\nSubmitted")
			renderPosts(c.out, posts)
			fmt.Fprintln(c.out, "\nComments")
			renderComments(c.out, comments)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "posts and comments to show, 0 for the whole first page")
	return cmd
}

func head[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
