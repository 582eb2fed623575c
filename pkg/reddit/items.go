package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"reddit-client/internal/client"
	"reddit-client/internal/feed"
	"reddit-client/internal/models"
	"reddit-client/internal/parser"
	"reddit-client/internal/search"
)

type VoteDirection int

const (
	Downvote VoteDirection = -1
	Unvote   VoteDirection = 0
	Upvote   VoteDirection = 1
)

func (r *Reddit) bindPost(d models.PostData) *Post { return &Post{r: r, info: d} }

func (r *Reddit) bindComment(d models.CommentData) *Comment { return &Comment{r: r, info: d} }

func (r *Reddit) bindSubreddit(d models.SubredditData) *Subreddit {
	return &Subreddit{link: r.Subreddit(d.DisplayName), info: d}
}

func (r *Reddit) bindUser(d models.UserData) *User {
	return &User{link: r.User(d.Name), info: d}
}

func (r *Reddit) bindSubmission(raw json.RawMessage) (*Submission, error) {
	post, children, err := parser.ParseSubmission(raw)
	if err != nil {
		return nil, err
	}

	s := &Submission{op: r.bindPost(post)}
	for _, child := range children {
		switch child.Kind {
		case models.KindComment:
			s.comments = append(s.comments, r.bindComment(child.Data))
		case models.KindMore:
			s.more = append(s.more, child.Data.Children...)
		}
	}
	return s, nil
}

// Post is a link or self post bound to the client that fetched it.
type Post struct {
	r    *Reddit
	info models.PostData
}

func (p *Post) Info() models.PostData { return p.info }

// FeedID is the fullname, e.g. t3_abc123.
func (p *Post) FeedID() string { return p.info.Name }

// URL is the absolute permalink of the post.
func (p *Post) URL() string { return parser.Permalink(p.info.Permalink) }

func (p *Post) Title() string { return p.info.Title }

func (p *Post) Subreddit() *SubredditLink { return p.r.Subreddit(p.info.Subreddit) }

func (p *Post) Author() *UserLink { return p.r.User(p.info.Author) }

// Submission fetches the post again together with its comments.
func (p *Post) Submission(ctx context.Context) (*Submission, error) {
	return p.r.Submission(ctx, p.info.ID)
}

func (p *Post) Reply(ctx context.Context, text string) (*Comment, error) {
	return p.r.reply(ctx, p.info.Name, text)
}

func (p *Post) Vote(ctx context.Context, dir VoteDirection) error {
	_, err := postForm[json.RawMessage](ctx, p.r, client.Vote, url.Values{
		"id":  {p.info.Name},
		"dir": {strconv.Itoa(int(dir))},
	})
	return err
}

// Comment is a t1 thing bound to the client that fetched it.
type Comment struct {
	r    *Reddit
	info models.CommentData
}

func (c *Comment) Info() models.CommentData { return c.info }

func (c *Comment) Name() string { return c.info.Name }

func (c *Comment) FeedID() string { return c.info.Name }

func (c *Comment) Body() string { return c.info.Body }

func (c *Comment) Author() *UserLink { return c.r.User(c.info.Author) }

// Replies are the comments nested under this one in the fetched tree. "more"
// stubs are left out.
func (c *Comment) Replies() []*Comment {
	var out []*Comment
	for _, child := range parser.CommentReplies(c.info) {
		if child.Kind == models.KindComment {
			out = append(out, c.r.bindComment(child.Data))
		}
	}
	return out
}

func (c *Comment) Reply(ctx context.Context, text string) (*Comment, error) {
	return c.r.reply(ctx, c.Name(), text)
}

type replyData struct {
	Things []models.Thing[models.CommentData] `json:"things"`
}

func (r *Reddit) reply(ctx context.Context, thingID, text string) (*Comment, error) {
	data, err := postForm[replyData](ctx, r, client.Comment, url.Values{
		"thing_id": {thingID},
		"text":     {text},
	})
	if err != nil {
		return nil, err
	}
	if len(data.Things) == 0 {
		return nil, fmt.Errorf("reply to %s: empty response", thingID)
	}
	return r.bindComment(data.Things[0].Data), nil
}

// Submission is a post with the top level of its comment tree.
type Submission struct {
	op       *Post
	comments []*Comment
	more     []string
}

func (s *Submission) Op() *Post { return s.op }

func (s *Submission) Comments() []*Comment { return s.comments }

// More lists the IDs of top level comments that were not sent inline.
func (s *Submission) More() []string { return s.more }

// SubredditLink names a subreddit without fetching it.
type SubredditLink struct {
	r    *Reddit
	name string
}

func (l *SubredditLink) Name() string { return l.name }

func (l *SubredditLink) Get(ctx context.Context) (*Subreddit, error) {
	info, err := about[models.SubredditData](ctx, l.r, client.SubredditAbout.Subreddit(l.name))
	if err != nil {
		return nil, err
	}
	return &Subreddit{link: l, info: info}, nil
}

func (l *SubredditLink) Top(ctx context.Context) ([]*Post, error) {
	return list(ctx, l.r, client.SubredditTop.Subreddit(l.name), l.r.bindPost)
}

func (l *SubredditLink) Hot(ctx context.Context) ([]*Post, error) {
	return list(ctx, l.r, client.SubredditHot.Subreddit(l.name), l.r.bindPost)
}

func (l *SubredditLink) New(ctx context.Context) ([]*Post, error) {
	return list(ctx, l.r, client.SubredditNew.Subreddit(l.name), l.r.bindPost)
}

// Search looks for posts inside this subreddit only.
func (l *SubredditLink) Search(ctx context.Context, query string, sort client.Sort) (*PostSearch, error) {
	return search.New(ctx, l.r.api, l.r.bindPost, client.SubredditSearch.Subreddit(l.name), query, sort)
}

// Feed streams posts made after Start is called. Options override the
// configured poll interval and retry budget.
func (l *SubredditLink) Feed(opts ...feed.Option) *PostFeed {
	return l.r.newFeed(client.SubredditNew.Subreddit(l.name), opts)
}

type SubmitOptions struct {
	Title string
	// Text makes a self post, URL a link post. URL wins when both are set.
	Text string
	URL  string
}

type submitData struct {
	Name string `json:"name"`
}

// Submit creates a post and returns its fullname.
func (l *SubredditLink) Submit(ctx context.Context, opts SubmitOptions) (string, error) {
	form := url.Values{
		"sr":    {l.name},
		"title": {opts.Title},
	}
	if opts.URL != "" {
		form.Set("kind", "link")
		form.Set("url", opts.URL)
	} else {
		form.Set("kind", "self")
		form.Set("text", opts.Text)
	}

	data, err := postForm[submitData](ctx, l.r, client.Submit, form)
	if err != nil {
		return "", err
	}
	return data.Name, nil
}

type Subreddit struct {
	link *SubredditLink
	info models.SubredditData
}

func (s *Subreddit) Link() *SubredditLink { return s.link }

func (s *Subreddit) Info() models.SubredditData { return s.info }

func (s *Subreddit) Name() string { return s.link.Name() }

func (s *Subreddit) FeedID() string { return s.info.Name }

func (s *Subreddit) Title() string { return s.info.Title }

func (s *Subreddit) Subscribers() int { return s.info.Subscribers }

func (s *Subreddit) URL() (*url.URL, error) {
	return url.Parse(parser.Permalink(s.info.URL))
}

func (s *Subreddit) Created() time.Time { return s.info.CreatedUTC.Time() }

// UserLink names an account without fetching it.
type UserLink struct {
	r    *Reddit
	name string
}

func (l *UserLink) Name() string { return l.name }

func (l *UserLink) Get(ctx context.Context) (*User, error) {
	info, err := about[models.UserData](ctx, l.r, client.UserAbout.User(l.name))
	if err != nil {
		return nil, err
	}
	return &User{link: l, info: info}, nil
}

func (l *UserLink) Submitted(ctx context.Context) ([]*Post, error) {
	return list(ctx, l.r, client.UserSubmitted.User(l.name), l.r.bindPost)
}

func (l *UserLink) Comments(ctx context.Context) ([]*Comment, error) {
	return list(ctx, l.r, client.UserComments.User(l.name), l.r.bindComment)
}

type User struct {
	link *UserLink
	info models.UserData
}

func (u *User) Link() *UserLink { return u.link }

func (u *User) Info() models.UserData { return u.info }

func (u *User) Name() string { return u.info.Name }

func (u *User) FeedID() string { return u.info.FeedID() }

func (u *User) IsModerator() bool { return u.info.IsMod }

func (u *User) IsVerified() bool { return u.info.Verified }

func (u *User) IsEmployee() bool { return u.info.IsEmployee }

func (u *User) HasGold() bool { return u.info.IsGold }

func (u *User) Created() time.Time { return u.info.CreatedUTC.Time() }

func (u *User) Submitted(ctx context.Context) ([]*Post, error) { return u.link.Submitted(ctx) }

func (u *User) Comments(ctx context.Context) ([]*Comment, error) { return u.link.Comments(ctx) }
