package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"reddit-client/pkg/reddit"
)

func newMeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := c.reddit.Me(cmd.Context())
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(me)
			}

			t := newTable(c.out, table.Row{"Name", "Karma", "Created", "Inbox", "Verified"})
			t.AppendRow(table.Row{"u/" + me.Name, me.LinkKarma + me.CommentKarma, day(me.CreatedUTC.Time()), me.InboxCount, me.Verified})
			t.Render()
			return nil
		},
	}
}

func newReplyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "reply <permalink> <text>",
		Short:   "Comment on a post",
		Example: `  redditctl reply https://www.reddit.com/r/test/comments/glccw4/test/ "test comment"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.reddit.Authenticated() {
				return reddit.ErrNotAuthenticated
			}

			sub, err := c.reddit.SubmissionFromLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			comment, err := sub.Op().Reply(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if c.json() {
				return c.writeJSON(comment.Info())
			}
			fmt.Fprintf(c.out, "replied to %q as %s\n", sub.Op().Title(), comment.Name())
			return nil
		},
	}
}
