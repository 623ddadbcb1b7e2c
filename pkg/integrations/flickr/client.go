package flickr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/tagtree/pkg/buildinfo"
	"github.com/matzehuels/tagtree/pkg/cache"
	"github.com/matzehuels/tagtree/pkg/httputil"
	"github.com/matzehuels/tagtree/pkg/integrations"
)

// DefaultBaseURL is the Flickr REST endpoint.
const DefaultBaseURL = "https://api.flickr.com/services/rest/"

// DefaultPerPage is the number of photos requested per search.
const DefaultPerPage = 20

// ErrAPI is returned when Flickr answers with a "fail" status.
var ErrAPI = errors.New("flickr API error")

// ErrNoAPIKey is returned by Search when the client has no API key.
var ErrNoAPIKey = errors.New("flickr API key not set")

// Flickr error codes that are not caller mistakes.
const (
	codeInvalidKey         = 100
	codeServiceUnavailable = 105
)

// Photo is one search result.
type Photo struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	FullURL  string `json:"full"`
	ThumbURL string `json:"thumb"`
	Tags     string `json:"tags"` // space separated, as Flickr returns them
}

// Client searches Flickr. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	apiKey  string
	baseURL string
	PerPage int
}

// NewClient returns a client that caches responses in c for ttl.
func NewClient(apiKey string, c cache.Cache, ttl time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent() + " (https://github.com/matzehuels/tagtree)",
	}
	return &Client{
		Client:  integrations.NewClient(c, "flickr:", ttl, headers),
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		PerPage: DefaultPerPage,
	}
}

// SetBaseURL points the client at another endpoint.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Search returns the photos tagged with tag in relevance order. An empty
// result is not an error. With refresh set the cache is bypassed.
func (c *Client) Search(ctx context.Context, tag string, refresh bool) ([]Photo, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: empty tag", ErrAPI)
	}

	key := cache.Key("search", tag, c.PerPage)
	var photos []Photo
	err := c.Cached(ctx, key, refresh, &photos, func() error {
		return c.fetch(ctx, tag, &photos)
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", tag, err)
	}
	return photos, nil
}

func (c *Client) searchURL(tag string) string {
	q := url.Values{}
	q.Set("method", "flickr.photos.search")
	q.Set("api_key", c.apiKey)
	q.Set("tags", tag)
	q.Set("sort", "relevance")
	q.Set("per_page", strconv.Itoa(c.PerPage))
	q.Set("extras", "url_m,url_sq,url_o,tags")
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	return c.baseURL + "?" + q.Encode()
}

func (c *Client) fetch(ctx context.Context, tag string, photos *[]Photo) error {
	var data searchResponse
	if err := c.Get(ctx, c.searchURL(tag), &data); err != nil {
		return err
	}
	if err := data.err(); err != nil {
		return err
	}

	out := make([]Photo, 0, len(data.Photos.Photo))
	for _, p := range data.Photos.Photo {
		full := p.URLO
		if full == "" {
			full = p.URLM
		}
		out = append(out, Photo{
			ID:       p.ID,
			Title:    p.Title,
			FullURL:  full,
			ThumbURL: p.URLSq,
			Tags:     p.Tags,
		})
	}
	*photos = out
	return nil
}

type searchResponse struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Photos  struct {
		Page    int `json:"page"`
		Pages   int `json:"pages"`
		PerPage int `json:"perpage"`
		Photo   []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Tags  string `json:"tags"`
			URLSq string `json:"url_sq"`
			URLM  string `json:"url_m"`
			URLO  string `json:"url_o"`
		} `json:"photo"`
	} `json:"photos"`
}

func (r searchResponse) err() error {
	if r.Stat == "ok" {
		return nil
	}
	err := fmt.Errorf("%w %d: %s", ErrAPI, r.Code, r.Message)
	switch r.Code {
	case codeInvalidKey:
		return fmt.Errorf("%w: %w", integrations.ErrUnauthorized, err)
	case codeServiceUnavailable:
		return httputil.Retryable(err)
	}
	return err
}
