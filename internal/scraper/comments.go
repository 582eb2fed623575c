package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
)

const (
	// the morechildren endpoint rejects larger batches
	moreBatchSize = 100
	expandWorkers = 3
	expandRounds  = 10
)

// moreJob is one morechildren request for part of a placeholder.
type moreJob struct {
	placeholder string
	batch       int
	ids         []string
}

type moreResult struct {
	job    moreJob
	things []models.Thing[models.CommentData]
	err    error
}

func (s *scraperService) ScrapePost(ctx context.Context, postID string) (models.PostDetail, error) {
	start := time.Now()
	postID = strings.TrimPrefix(postID, models.KindLink+"_")

	raw, err := s.client.FetchJSON(ctx, s.client.URL(client.Submission.ID(postID), url.Values{"raw_json": {"1"}}))
	if err != nil {
		return models.PostDetail{}, fmt.Errorf("fetch post JSON: %w", err)
	}

	detail, err := s.parser.ParsePost(ctx, raw)
	if err != nil {
		return models.PostDetail{}, err
	}

	initial := countComments(detail.Comments)
	expanded := s.expandComments(ctx, postID, &detail)
	detail.Comments = settle(detail.Comments)

	s.logger.Info().
		Str("post", postID).
		Int("initial", initial).
		Int("expanded", expanded).
		Int("total", countComments(detail.Comments)).
		Dur("elapsed", time.Since(start)).
		Msg("post scraped")

	return detail, nil
}

// expandComments replaces "load more" placeholders with the comments they
// stand for, a round at a time, until none are left or rounds run out. A
// placeholder is tried once; failures leave it in the tree.
func (s *scraperService) expandComments(ctx context.Context, postID string, detail *models.PostDetail) int {
	attempted := make(map[string]bool)
	expanded := 0

	for round := 0; round < expandRounds && ctx.Err() == nil; round++ {
		var jobs []moreJob
		for _, stub := range findMore(detail.Comments) {
			if attempted[stub.ID] {
				continue
			}
			attempted[stub.ID] = true
			jobs = append(jobs, batches(stub)...)
		}
		if len(jobs) == 0 {
			break
		}

		byPlaceholder := make(map[string][][]models.Thing[models.CommentData])
		failed := make(map[string]bool)
		for res := range s.runJobs(ctx, postID, jobs) {
			if res.err != nil {
				s.logger.Warn().Err(res.err).Str("placeholder", res.job.placeholder).Msg("expanding comments failed")
				failed[res.job.placeholder] = true
				continue
			}
			parts := byPlaceholder[res.job.placeholder]
			for len(parts) <= res.job.batch {
				parts = append(parts, nil)
			}
			parts[res.job.batch] = res.things
			byPlaceholder[res.job.placeholder] = parts
		}

		for placeholder, parts := range byPlaceholder {
			if failed[placeholder] {
				continue
			}
			// nest across batches: a reply's parent may sit in an earlier one
			var things []models.Thing[models.CommentData]
			for _, part := range parts {
				things = append(things, part...)
			}
			comments := s.parser.NestComments(ctx, things)
			if replacePlaceholder(&detail.Comments, placeholder, comments) {
				expanded += countComments(comments)
			}
		}

		s.logger.Debug().Int("round", round).Int("jobs", len(jobs)).Int("expanded", expanded).Msg("comment expansion round")
	}

	return expanded
}

// runJobs fans jobs out to a fixed pool of workers. The channel closes once
// every job has a result.
func (s *scraperService) runJobs(ctx context.Context, postID string, jobs []moreJob) <-chan moreResult {
	work := make(chan moreJob, len(jobs))
	results := make(chan moreResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < expandWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range work {
				things, err := s.fetchMore(ctx, postID, job.ids)
				results <- moreResult{job: job, things: things, err: err}
			}
		}()
	}

	for _, job := range jobs {
		work <- job
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (s *scraperService) fetchMore(ctx context.Context, postID string, ids []string) ([]models.Thing[models.CommentData], error) {
	data, err := s.client.FetchMoreComments(ctx, postID, ids)
	if err != nil {
		return nil, err
	}
	return s.parser.DecodeMoreComments(data)
}

// findMore returns the expandable placeholders in tree order. "continue this
// thread" stubs need a separate request per thread and are skipped.
func findMore(comments []models.Comment) []models.Comment {
	var out []models.Comment
	for _, c := range comments {
		if c.IsMore {
			if strings.HasPrefix(c.ID, "more_") && len(c.MoreIDs) > 0 {
				out = append(out, c)
			}
			continue
		}
		out = append(out, findMore(c.Replies)...)
	}
	return out
}

// batches splits a placeholder's IDs into request sized jobs, dropping
// duplicates and the t1_ prefix.
func batches(stub models.Comment) []moreJob {
	seen := make(map[string]bool, len(stub.MoreIDs))
	var ids []string
	for _, id := range stub.MoreIDs {
		id = strings.TrimPrefix(id, models.KindComment+"_")
		if id == "" || id == "continue" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var jobs []moreJob
	for i := 0; i < len(ids); i += moreBatchSize {
		end := min(i+moreBatchSize, len(ids))
		jobs = append(jobs, moreJob{placeholder: stub.ID, batch: len(jobs), ids: ids[i:end]})
	}
	return jobs
}

// replacePlaceholder swaps the placeholder with id for comments, wherever it
// sits in the tree.
func replacePlaceholder(comments *[]models.Comment, id string, replacement []models.Comment) bool {
	list := *comments
	for i := range list {
		if list[i].ID == id && list[i].IsMore {
			out := make([]models.Comment, 0, len(list)-1+len(replacement))
			out = append(out, list[:i]...)
			out = append(out, replacement...)
			out = append(out, list[i+1:]...)
			*comments = out
			return true
		}
		if replacePlaceholder(&list[i].Replies, id, replacement) {
			return true
		}
	}
	return false
}

// settle recomputes HasMore and MoreIDs from the placeholders still present
// under each comment.
func settle(comments []models.Comment) []models.Comment {
	for i := range comments {
		c := &comments[i]
		if c.IsMore {
			continue
		}
		c.Replies = settle(c.Replies)
		c.HasMore = false
		c.MoreIDs = nil
		for _, r := range c.Replies {
			if r.IsMore {
				c.HasMore = true
				c.MoreIDs = append(c.MoreIDs, r.MoreIDs...)
			}
		}
	}
	return comments
}

// countComments counts real comments in a tree, placeholders excluded.
func countComments(comments []models.Comment) int {
	count := 0
	for _, c := range comments {
		if !c.IsMore {
			count++
		}
		count += countComments(c.Replies)
	}
	return count
}
