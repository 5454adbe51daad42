// Package lyrics implements lyrics retrieval against a Genius-compatible
// metadata API plus page scraping.
//
// Retrieval is a two-step pipeline: a free-text search against the hosted
// API locates the canonical content page for an (artist, title) pair, and
// the page itself is then fetched and scraped, since the site exposes no
// structured lyrics API. Two page layouts are recognized: the current one
// marks the lyrics container with a data-lyrics-container attribute, the
// legacy one uses a "lyrics" class. Every failure mode collapses into
// ErrUnavailable; the caller substitutes its own fallback text.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable means no lyrics could be produced, whether because the
// search found nothing, the page had no recognizable container, or a
// network/parse step failed. The response renders all of these identically.
var ErrUnavailable = errors.New("lyrics: unavailable")

// Client fetches lyrics for a song. Construct with New.
type Client struct {
	apiURL   string // search API base, e.g. https://api.genius.com
	siteURL  string // content site base, e.g. https://genius.com
	apiToken string // bearer token for the search API
	httpc    *http.Client
}

// New returns a Client bound to the given API and site endpoints. When
// httpc is nil, http.DefaultClient is used.
func New(apiURL, siteURL, apiToken string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		siteURL:  strings.TrimRight(siteURL, "/"),
		apiToken: apiToken,
		httpc:    httpc,
	}
}

// searchResponse mirrors the hits the search endpoint returns.
type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				Path string `json:"path"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// Fetch returns the lyrics text for the given artist and title, or
// ErrUnavailable.
//
// Step 1 queries the search API with the combined "artist title" string;
// a non-200 status or zero hits ends the lookup. Step 2 fetches the first
// hit's content page and extracts the lyrics container, converting <br>
// markers to newlines before trimming.
func (c *Client) Fetch(ctx context.Context, artist, title string) (string, error) {
	path, err := c.search(ctx, artist+" "+title)
	if err != nil {
		return "", err
	}
	return c.scrape(ctx, c.siteURL+path)
}

// search resolves a free-text query to the first hit's content-page path.
func (c *Client) search(ctx context.Context, query string) (string, error) {
	u := c.apiURL + "/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("lyrics search unreachable")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: search status %d", ErrUnavailable, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(sr.Response.Hits) == 0 {
		return "", ErrUnavailable
	}
	path := sr.Response.Hits[0].Result.Path
	if path == "" {
		return "", ErrUnavailable
	}
	return path, nil
}

// scrape fetches a content page and extracts the lyrics text from the first
// recognized container.
func (c *Client) scrape(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("lyrics page unreachable")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Current layout first, legacy class-based layout as fallback.
	container := doc.Find(`div[data-lyrics-container="true"]`).First()
	if container.Length() == 0 {
		container = doc.Find("div.lyrics").First()
	}
	if container.Length() == 0 {
		return "", ErrUnavailable
	}

	// Line breaks carry meaning in lyrics; turn them into newlines before
	// flattening the node to text.
	container.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	text := strings.TrimSpace(container.Text())
	if text == "" {
		return "", ErrUnavailable
	}
	return text, nil
}
