package model

// Book is the formatted shape of a Google Books volume. Absent fields get
// the documented fallbacks rather than zero values from the raw payload.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	AverageRating float64  `json:"averageRating"`
	RatingsCount  int      `json:"ratingsCount"`
	Language      string   `json:"language"`
	Thumbnail     *string  `json:"thumbnail"`
	PreviewLink   string   `json:"previewLink,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
}

type BookPage struct {
	TotalItems int    `json:"totalItems"`
	Items      []Book `json:"items"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
