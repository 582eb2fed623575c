// Package search pages through listing endpoints with before/after cursors.
//
// A Page is immutable. Next and Prev issue a fresh request each time they are
// called and return a new Page that shares the original Query.
package search

import (
	"context"
	"encoding/json"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
)

// MaxCollectPages bounds Collect when no item limit is given.
const MaxCollectPages = 50

// Source is the transport a pager needs: build a filtered URL and fetch it.
type Source interface {
	FetchJSON(ctx context.Context, url string) (json.RawMessage, error)
	FilterURL(ep client.Endpoint, query string, sort client.Sort, before, after string) (string, error)
}

// Query is fixed when a search starts and resent with every page.
type Query struct {
	Endpoint client.Endpoint
	Text     string
	Sort     client.Sort
}

// Cursor marks the edges of a page. Empty means no page in that direction.
type Cursor struct {
	Before string
	After  string
}

// pager is the state every page of one search shares.
type pager[R, T any] struct {
	src     Source
	convert func(R) T
	query   Query
}

type Page[R, T any] struct {
	p      *pager[R, T]
	items  []T
	cursor Cursor
}

// New runs the first fetch of a search with no cursor.
func New[R, T any](ctx context.Context, src Source, convert func(R) T, ep client.Endpoint, text string, sort client.Sort) (*Page[R, T], error) {
	p := &pager[R, T]{
		src:     src,
		convert: convert,
		query:   Query{Endpoint: ep, Text: text, Sort: sort},
	}
	return p.fetch(ctx, "", "")
}

// Fetch runs one filtered request and converts the children in order.
func Fetch[R, T any](ctx context.Context, src Source, convert func(R) T, q Query, before, after string) ([]T, Cursor, error) {
	url, err := src.FilterURL(q.Endpoint, q.Text, q.Sort, before, after)
	if err != nil {
		return nil, Cursor{}, err
	}

	raw, err := src.FetchJSON(ctx, url)
	if err != nil {
		return nil, Cursor{}, err
	}

	listing, err := client.DecodeJSON[models.Listing[R]](raw)
	if err != nil {
		return nil, Cursor{}, err
	}

	return ConvertAll(listing.Items(), convert), Cursor{Before: listing.Data.Before, After: listing.Data.After}, nil
}

// ConvertAll maps raws through convert, keeping order.
func ConvertAll[R, T any](raws []R, convert func(R) T) []T {
	out := make([]T, 0, len(raws))
	for _, r := range raws {
		out = append(out, convert(r))
	}
	return out
}

func (p *pager[R, T]) fetch(ctx context.Context, before, after string) (*Page[R, T], error) {
	items, cursor, err := Fetch(ctx, p.src, p.convert, p.query, before, after)
	if err != nil {
		return nil, err
	}
	return &Page[R, T]{p: p, items: items, cursor: cursor}, nil
}

// Results is this page only, in server order.
func (pg *Page[R, T]) Results() []T { return pg.items }

func (pg *Page[R, T]) Before() string { return pg.cursor.Before }

func (pg *Page[R, T]) After() string { return pg.cursor.After }

func (pg *Page[R, T]) HasNext() bool { return pg.cursor.After != "" }

func (pg *Page[R, T]) HasPrev() bool { return pg.cursor.Before != "" }

func (pg *Page[R, T]) Query() Query { return pg.p.query }

// Next fetches the page after this one. It returns nil, nil when there is none.
func (pg *Page[R, T]) Next(ctx context.Context) (*Page[R, T], error) {
	if !pg.HasNext() {
		return nil, nil
	}
	return pg.p.fetch(ctx, "", pg.cursor.After)
}

// Prev fetches the page before this one. It returns nil, nil when there is none.
func (pg *Page[R, T]) Prev(ctx context.Context) (*Page[R, T], error) {
	if !pg.HasPrev() {
		return nil, nil
	}
	return pg.p.fetch(ctx, pg.cursor.Before, "")
}

// Collect gathers results from this page onwards until limit items are held.
// A limit of zero or less walks until the last page, up to MaxCollectPages.
func (pg *Page[R, T]) Collect(ctx context.Context, limit int) ([]T, error) {
	var out []T
	page := pg

	for pages := 0; page != nil && pages < MaxCollectPages; pages++ {
		out = append(out, page.items...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}

		next, err := page.Next(ctx)
		if err != nil {
			return out, err
		}
		page = next
	}

	return out, nil
}

// Walk calls fn for every page from this one onwards until fn returns false,
// the pages run out, or MaxCollectPages is reached.
func (pg *Page[R, T]) Walk(ctx context.Context, fn func(*Page[R, T]) bool) error {
	page := pg
	for pages := 0; page != nil && pages < MaxCollectPages; pages++ {
		if !fn(page) {
			return nil
		}
		next, err := page.Next(ctx)
		if err != nil {
			return err
		}
		page = next
	}
	return nil
}
