package models

// SubredditMeta describes a subreddit listing request
// swagger:model SubredditMeta
type SubredditMeta struct {
	// Requested limit, 0 when the server default applied
	RequestedLimit int `json:"requested_limit"`
	// Actual count of posts returned
	ActualCount int `json:"actual_count"`
	// Subreddit name
	Subreddit string `json:"subreddit"`
	// Since timestamp (Unix time)
	SinceTimestamp int64 `json:"since_timestamp"`
	// Processing time in milliseconds
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SubredditResponse represents a response for the subreddit endpoint
// swagger:model SubredditResponse
type SubredditResponse struct {
	// List of posts, newest first
	Posts []Post `json:"posts"`
	// Metadata about the request
	Meta SubredditMeta `json:"meta"`
}

// SearchMeta describes a post search request
// swagger:model SearchMeta
type SearchMeta struct {
	// Search query as sent, including any author: clause
	Query string `json:"query"`
	// Subreddit the search was restricted to
	Subreddit string `json:"subreddit,omitempty"`
	// Sort order
	Sort string `json:"sort"`
	// Count of posts returned
	Count int `json:"count"`
	// Processing time in milliseconds
	ProcessingTimeMs int64 `json:"processing_time_ms"`
	// Requested limit description
	RequestedLimit string `json:"requested_limit"`
}

// SearchResponse represents a response for the search endpoint
// swagger:model SearchResponse
type SearchResponse struct {
	// List of posts matching the search
	Posts []Post `json:"posts"`
	// Metadata about the search
	Meta SearchMeta `json:"meta"`
}

// SubredditSearchResponse lists subreddits matching a query
// swagger:model SubredditSearchResponse
type SubredditSearchResponse struct {
	Query      string             `json:"query"`
	Subreddits []SubredditSummary `json:"subreddits"`
}
