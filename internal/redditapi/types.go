package redditapi

// Wire types for reddit's public listing JSON. Private to this package.

type listingResponse struct {
	Data struct {
		Children []struct {
			Data wirePost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type wirePost struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
}
