package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"reddit-client/pkg/reddit"
)

const textWidth = 60

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(header)
	return t
}

func day(t time.Time) string {
	if t.IsZero() || t.Unix() == 0 {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func renderPosts(w io.Writer, posts []*reddit.Post) {
	t := newTable(w, table.Row{"Subreddit", "Title", "Author", "Score", "Comments", "ID"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	for _, p := range posts {
		info := p.Info()
		t.AppendRow(table.Row{"r/" + info.Subreddit, info.Title, info.Author, info.Score, info.NumComments, info.Name})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d posts", len(posts))})
	t.Render()
}

func renderComments(w io.Writer, comments []*reddit.Comment) {
	t := newTable(w, table.Row{"Subreddit", "Body", "Score", "Created"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	for _, c := range comments {
		info := c.Info()
		t.AppendRow(table.Row{"r/" + info.Subreddit, info.Body, info.Score, day(info.CreatedUTC.Time())})
	}
	t.Render()
}

func renderSubreddits(w io.Writer, subs []*reddit.Subreddit) {
	t := newTable(w, table.Row{"Name", "Title", "Subscribers", "Created", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	for _, s := range subs {
		info := s.Info()
		t.AppendRow(table.Row{s.Name(), info.Title, info.Subscribers, day(s.Created()), info.URL})
	}
	t.Render()
}

func renderUsers(w io.Writer, users []*reddit.User) {
	t := newTable(w, table.Row{"Name", "Karma", "Created", "Moderator", "Employee", "Gold", "Verified"})
	for _, u := range users {
		info := u.Info()
		t.AppendRow(table.Row{"u/" + u.Name(), info.LinkKarma + info.CommentKarma, day(u.Created()),
			u.IsModerator(), u.IsEmployee(), u.HasGold(), u.IsVerified()})
	}
	t.Render()
}
