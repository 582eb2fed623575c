package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind prefixes used in fullnames and in the "kind" field of things.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindSubreddit = "t5"
	KindMore      = "more"
	KindListing   = "Listing"
)

// Thing is the {kind, data} wrapper around every API object.
type Thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

// Listing is the envelope returned by collection endpoints. An empty Before or
// After means there is no page in that direction.
type Listing[T any] struct {
	Kind string         `json:"kind"`
	Data ListingData[T] `json:"data"`
}

type ListingData[T any] struct {
	Modhash  string     `json:"modhash"`
	Dist     int        `json:"dist"`
	Children []Thing[T] `json:"children"`
	Before   string     `json:"before"`
	After    string     `json:"after"`
}

// Items returns the child payloads in server order.
func (l Listing[T]) Items() []T {
	items := make([]T, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		items = append(items, child.Data)
	}
	return items
}

// Timestamp is a unix time sent as a float ("created_utc": 1700000000.0).
type Timestamp float64

func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Edited is false for unedited things and the edit time otherwise.
type Edited struct {
	At time.Time
}

func (e *Edited) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "false", "null", "true":
		e.At = time.Time{}
		return nil
	}

	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("edited: %w", err)
	}
	e.At = time.Unix(int64(secs), 0).UTC()
	return nil
}

func (e Edited) MarshalJSON() ([]byte, error) {
	if e.At.IsZero() {
		return []byte("false"), nil
	}
	return []byte(strconv.FormatInt(e.At.Unix(), 10)), nil
}

func (e Edited) IsEdited() bool { return !e.At.IsZero() }

type PostData struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Title                 string    `json:"title"`
	Selftext              string    `json:"selftext"`
	Author                string    `json:"author"`
	AuthorFullname        string    `json:"author_fullname"`
	Subreddit             string    `json:"subreddit"`
	SubredditNamePrefixed string    `json:"subreddit_name_prefixed"`
	Score                 int       `json:"score"`
	Ups                   int       `json:"ups"`
	Downs                 int       `json:"downs"`
	UpvoteRatio           float64   `json:"upvote_ratio"`
	NumComments           int       `json:"num_comments"`
	CreatedUTC            Timestamp `json:"created_utc"`
	Edited                Edited    `json:"edited"`
	Permalink             string    `json:"permalink"`
	URL                   string    `json:"url"`
	Domain                string    `json:"domain"`
	LinkFlairText         string    `json:"link_flair_text"`
	IsSelf                bool      `json:"is_self"`
	Over18                bool      `json:"over_18"`
	Stickied              bool      `json:"stickied"`
	Locked                bool      `json:"locked"`
	Archived              bool      `json:"archived"`
}

// FeedID is the fullname, which is what the before/after cursors refer to.
func (p PostData) FeedID() string { return p.Name }

type SubredditData struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	DisplayName       string    `json:"display_name"`
	Title             string    `json:"title"`
	PublicDescription string    `json:"public_description"`
	Subscribers       int       `json:"subscribers"`
	ActiveUserCount   int       `json:"active_user_count"`
	URL               string    `json:"url"`
	CreatedUTC        Timestamp `json:"created_utc"`
	Over18            bool      `json:"over18"`
	SubredditType     string    `json:"subreddit_type"`
}

func (s SubredditData) FeedID() string { return s.Name }

type UserData struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LinkKarma    int       `json:"link_karma"`
	CommentKarma int       `json:"comment_karma"`
	TotalKarma   int       `json:"total_karma"`
	CreatedUTC   Timestamp `json:"created_utc"`
	IsMod        bool      `json:"is_mod"`
	IsEmployee   bool      `json:"is_employee"`
	IsGold       bool      `json:"is_gold"`
	Verified     bool      `json:"verified"`
	HasVerified  bool      `json:"has_verified_email"`
	IconImg      string    `json:"icon_img"`
}

func (u UserData) FeedID() string { return KindAccount + "_" + u.ID }

// CommentData covers both t1 comments and "more" stubs. Replies is either an
// empty string or a nested Listing.
type CommentData struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Score      int             `json:"score"`
	CreatedUTC Timestamp       `json:"created_utc"`
	Edited     Edited          `json:"edited"`
	ParentID   string          `json:"parent_id"`
	LinkID     string          `json:"link_id"`
	LinkTitle  string          `json:"link_title"`
	Subreddit  string          `json:"subreddit"`
	Permalink  string          `json:"permalink"`
	Depth      int             `json:"depth"`
	Stickied   bool            `json:"stickied"`
	Replies    json.RawMessage `json:"replies"`

	// Set on "more" stubs only.
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

func (c CommentData) FeedID() string { return c.Name }

type MeResponse struct {
	UserData
	InboxCount int  `json:"inbox_count"`
	HasMail    bool `json:"has_mail"`
	Over18     bool `json:"over_18"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
