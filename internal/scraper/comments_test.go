package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-client/internal/models"
)

func TestBatchesDedupesAndSplits(t *testing.T) {
	ids := []string{"t1_a", "a", "continue", ""}
	for i := 0; i < 150; i++ {
		ids = append(ids, fmt.Sprintf("id%d", i))
	}

	jobs := batches(models.Comment{ID: "more_x", IsMore: true, MoreIDs: ids})
	require.Len(t, jobs, 2)
	assert.Equal(t, 0, jobs[0].batch)
	assert.Equal(t, 1, jobs[1].batch)
	assert.Len(t, jobs[0].ids, moreBatchSize)
	assert.Len(t, jobs[1].ids, 51)
	assert.Equal(t, "a", jobs[0].ids[0])
	assert.Equal(t, "more_x", jobs[1].placeholder)
}

func TestReplacePlaceholderNested(t *testing.T) {
	tree := []models.Comment{
		{ID: "c1", Replies: []models.Comment{
			{ID: "c2"},
			{ID: "more_1", IsMore: true, MoreIDs: []string{"c3"}},
			{ID: "c4"},
		}},
	}

	ok := replacePlaceholder(&tree, "more_1", []models.Comment{{ID: "c3"}})
	require.True(t, ok)

	var got []string
	for _, c := range tree[0].Replies {
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{"c2", "c3", "c4"}, got)
	assert.False(t, replacePlaceholder(&tree, "more_1", nil))
}

func TestSettleAndCount(t *testing.T) {
	tree := settle([]models.Comment{
		{ID: "c1", HasMore: true, MoreIDs: []string{"stale"}, Replies: []models.Comment{{ID: "c2"}}},
		{ID: "c3", Replies: []models.Comment{{ID: "more_2", IsMore: true, MoreIDs: []string{"c9"}}}},
	})

	assert.False(t, tree[0].HasMore)
	assert.Nil(t, tree[0].MoreIDs)
	assert.True(t, tree[1].HasMore)
	assert.Equal(t, []string{"c9"}, tree[1].MoreIDs)
	assert.Equal(t, 3, countComments(tree))
	assert.Len(t, findMore(tree), 1)
}
