// Package recognizer implements the client for the external
// audio-fingerprinting service (Audd-compatible API).
//
// The service takes a base64-encoded audio payload and matches it against a
// reference database of known recordings. A clip that matches nothing is a
// normal outcome, reported as ErrNoMatch; transport and decoding problems
// are reported as ErrDegraded so callers can see the "service down" branch
// instead of an implicit catch-all. Exactly one attempt is made per call,
// without retries.
package recognizer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sentinel outcomes of a recognition attempt. Both are expected conditions,
// not programming errors.
var (
	// ErrNoMatch means the service answered but found no song for the clip.
	ErrNoMatch = errors.New("recognizer: no match")
	// ErrDegraded means the service could not be reached or answered with
	// something unparseable. Callers treat it like a miss but may log it.
	ErrDegraded = errors.New("recognizer: service degraded")
)

// Fallback metadata used when the service matches a song but omits a field.
const (
	UnknownTitle  = "Titre inconnu"
	UnknownArtist = "Artiste inconnu"
)

// SongMatch is the result of a successful fingerprint match.
type SongMatch struct {
	Title  string // never empty; UnknownTitle when the service omits it
	Artist string // never empty; UnknownArtist when the service omits it
	Link   string // external listen link, possibly empty
}

// Client calls the fingerprint recognition API. The zero value is not
// usable; construct with New.
type Client struct {
	apiURL   string
	apiToken string
	httpc    *http.Client
}

// New returns a Client bound to the given endpoint and API token. When
// httpc is nil, http.DefaultClient is used (transport default timeouts).
func New(apiURL, apiToken string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{apiURL: apiURL, apiToken: apiToken, httpc: httpc}
}

// auddResponse mirrors the subset of the API response the pipeline consumes.
type auddResponse struct {
	Status string `json:"status"`
	Result *struct {
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		SongLink string `json:"song_link"`
		YouTube  *struct {
			URL string `json:"url"`
		} `json:"youtube"`
	} `json:"result"`
}

// Recognize submits the raw audio bytes for fingerprint matching and returns
// the matched song metadata.
//
// The payload is base64-encoded into a form POST requesting lyrics and
// marketplace links alongside the match. Outcomes:
//   - (match, nil) on success, with title/artist fallbacks applied;
//   - (nil, ErrNoMatch) when the service reports no result;
//   - (nil, ErrDegraded) on transport failure, non-2xx status, or a
//     malformed body.
func (c *Client) Recognize(ctx context.Context, audio []byte) (*SongMatch, error) {
	form := url.Values{
		"api_token": {c.apiToken},
		"audio":     {base64.StdEncoding.EncodeToString(audio)},
		"return":    {"lyrics,apple_music,spotify"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegraded, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("fingerprint service unreachable")
		return nil, fmt.Errorf("%w: %v", ErrDegraded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("fingerprint service error status")
		return nil, fmt.Errorf("%w: status %d", ErrDegraded, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegraded, err)
	}

	var ar auddResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		log.Warn().Err(err).Msg("fingerprint response unparseable")
		return nil, fmt.Errorf("%w: %v", ErrDegraded, err)
	}

	if ar.Status != "success" || ar.Result == nil {
		return nil, ErrNoMatch
	}

	m := &SongMatch{
		Title:  ar.Result.Title,
		Artist: ar.Result.Artist,
		Link:   ar.Result.SongLink,
	}
	if ar.Result.YouTube != nil && ar.Result.YouTube.URL != "" {
		m.Link = ar.Result.YouTube.URL
	}
	if m.Title == "" {
		m.Title = UnknownTitle
	}
	if m.Artist == "" {
		m.Artist = UnknownArtist
	}
	return m, nil
}
