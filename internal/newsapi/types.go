package newsapi

// Wire types for the NewsAPI v2 REST responses. These never leave this
// package; Search and Headlines return canonical content items.

type searchResponse struct {
	Status       string        `json:"status"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	TotalResults int           `json:"totalResults"`
	Articles     []wireArticle `json:"articles"`
}

type wireArticle struct {
	Source      wireSource `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	PublishedAt string     `json:"publishedAt"`
	Content     string     `json:"content"`
}

type wireSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
