package booksearch

// Item is one book returned by the search API, with HTML markup in the
// title and description converted to Markdown.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Price       string `json:"price,omitempty"`
	Discount    string `json:"discount,omitempty"`
	Publisher   string `json:"publisher"`
	PubDate     string `json:"pubdate"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

// searchResponse mirrors the book.json payload.
type searchResponse struct {
	LastBuildDate string `json:"lastBuildDate"`
	Total         int    `json:"total"`
	Start         int    `json:"start"`
	Display       int    `json:"display"`
	Items         []Item `json:"items"`
}

// apiError is the error body returned with non-200 statuses.
type apiError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}
