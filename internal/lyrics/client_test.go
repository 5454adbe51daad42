package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newLyricsServer serves both halves of the pipeline from one address: the
// search API under /search and the content pages everywhere else.
func newLyricsServer(t *testing.T, hitPath, pageHTML string, searchStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if searchStatus != http.StatusOK {
			w.WriteHeader(searchStatus)
			return
		}
		if hitPath == "" {
			fmt.Fprint(w, `{"response":{"hits":[]}}`)
			return
		}
		fmt.Fprintf(w, `{"response":{"hits":[{"result":{"path":%q}}]}}`, hitPath)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	})
	return httptest.NewServer(mux)
}

func TestFetch_CurrentLayoutConvertsLineBreaks(t *testing.T) {
	page := `<html><body>
		<div data-lyrics-container="true">Is this the real life?<br>Is this just fantasy?</div>
	</body></html>`
	srv := newLyricsServer(t, "/queen-bohemian-rhapsody-lyrics", page, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, srv.URL, "tok", srv.Client())
	text, err := c.Fetch(context.Background(), "Queen", "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := "Is this the real life?\nIs this just fantasy?"
	if text != want {
		t.Fatalf("text = %q; want %q", text, want)
	}
}

func TestFetch_LegacyLayoutFallback(t *testing.T) {
	page := `<html><body><div class="lyrics">  old layout words  </div></body></html>`
	srv := newLyricsServer(t, "/song-lyrics", page, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, srv.URL, "tok", srv.Client())
	text, err := c.Fetch(context.Background(), "A", "T")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "old layout words" {
		t.Fatalf("text = %q", text)
	}
}

func TestFetch_FirstContainerWins(t *testing.T) {
	page := `<html><body>
		<div data-lyrics-container="true">first block</div>
		<div data-lyrics-container="true">second block</div>
	</body></html>`
	srv := newLyricsServer(t, "/p", page, http.StatusOK)
	defer srv.Close()

	text, err := New(srv.URL, srv.URL, "tok", srv.Client()).Fetch(context.Background(), "A", "T")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "first block" {
		t.Fatalf("text = %q; want first container only", text)
	}
}

func TestFetch_Unavailable(t *testing.T) {
	cases := []struct {
		name         string
		hitPath      string
		pageHTML     string
		searchStatus int
	}{
		{"zero hits", "", "unused", http.StatusOK},
		{"search error status", "/p", "unused", http.StatusForbidden},
		{"no lyrics container", "/p", `<html><body><div class="other">x</div></body></html>`, http.StatusOK},
		{"empty container", "/p", `<html><body><div data-lyrics-container="true">   </div></body></html>`, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newLyricsServer(t, tc.hitPath, tc.pageHTML, tc.searchStatus)
			defer srv.Close()

			_, err := New(srv.URL, srv.URL, "tok", srv.Client()).Fetch(context.Background(), "A", "T")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("got %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestFetch_SearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, srv.URL, "tok", nil).Fetch(context.Background(), "A", "T")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
