// Package googlebooks talks to the Google Books volumes API, the catalog
// this system lends from. Responses are reshaped into model.Book with fixed
// fallbacks for absent fields.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/httpx"
)

type Repo interface {
	Search(ctx context.Context, query string, maxResults, startIndex int) (*model.BookPage, error)
	ByID(ctx context.Context, id string) (*model.Book, error)
	ByCategory(ctx context.Context, category string, maxResults, startIndex int) (*model.BookPage, error)
}

type httpRepo struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string) Repo {
	return &httpRepo{baseURL: baseURL, client: httpx.Client()}
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		RatingsCount  int      `json:"ratingsCount"`
		Language      string   `json:"language"`
		ImageLinks    struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
		PreviewLink string `json:"previewLink"`
		InfoLink    string `json:"infoLink"`
	} `json:"volumeInfo"`
}

type volumePage struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

func (r *httpRepo) Search(ctx context.Context, query string, maxResults, startIndex int) (*model.BookPage, error) {
	v := url.Values{}
	v.Set("q", query)
	v.Set("maxResults", strconv.Itoa(maxResults))
	v.Set("startIndex", strconv.Itoa(startIndex))
	v.Set("printType", "books")
	return r.page(ctx, v)
}

func (r *httpRepo) ByCategory(ctx context.Context, category string, maxResults, startIndex int) (*model.BookPage, error) {
	v := url.Values{}
	v.Set("q", "subject:"+category)
	v.Set("maxResults", strconv.Itoa(maxResults))
	v.Set("startIndex", strconv.Itoa(startIndex))
	v.Set("orderBy", "relevance")
	return r.page(ctx, v)
}

func (r *httpRepo) page(ctx context.Context, v url.Values) (*model.BookPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google books: %s", resp.Status)
	}

	var vp volumePage
	if err := json.NewDecoder(resp.Body).Decode(&vp); err != nil {
		return nil, err
	}
	page := &model.BookPage{TotalItems: vp.TotalItems, Items: make([]model.Book, 0, len(vp.Items))}
	for _, vol := range vp.Items {
		page.Items = append(page.Items, format(vol))
	}
	return page, nil
}

// ByID returns (nil, nil) when the volume does not exist.
func (r *httpRepo) ByID(ctx context.Context, id string) (*model.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google books: %s", resp.Status)
	}

	var vol volume
	if err := json.NewDecoder(resp.Body).Decode(&vol); err != nil {
		return nil, err
	}
	b := format(vol)
	return &b, nil
}

func format(v volume) model.Book {
	vi := v.VolumeInfo
	b := model.Book{
		ID:            v.ID,
		Title:         vi.Title,
		Authors:       vi.Authors,
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
		PageCount:     vi.PageCount,
		Categories:    vi.Categories,
		AverageRating: vi.AverageRating,
		RatingsCount:  vi.RatingsCount,
		Language:      vi.Language,
		PreviewLink:   vi.PreviewLink,
		InfoLink:      vi.InfoLink,
	}
	if b.Title == "" {
		b.Title = "Untitled"
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if b.Publisher == "" {
		b.Publisher = "Unknown publisher"
	}
	if b.Description == "" {
		b.Description = "No description available"
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	if b.Language == "" {
		b.Language = "unknown"
	}
	if vi.ImageLinks.Thumbnail != "" {
		b.Thumbnail = &vi.ImageLinks.Thumbnail
	} else if vi.ImageLinks.SmallThumbnail != "" {
		b.Thumbnail = &vi.ImageLinks.SmallThumbnail
	}
	return b
}
