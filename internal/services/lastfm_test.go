package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tracklist/internal/shared"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

const artistJSON = `{
  "artist": {
    "name": "Queen",
    "image": [
      {"#text": "https://img/small.png", "size": "small"},
      {"#text": "https://img/medium.png", "size": "medium"},
      {"#text": "https://img/large.png", "size": "large"},
      {"#text": "https://img/xl.png", "size": "extralarge"},
      {"#text": "https://img/mega.png", "size": "mega"}
    ],
    "similar": {"artist": [{"name": "David Bowie"}, {"name": "Freddie Mercury"}]},
    "bio": {"summary": "Queen were a <b>British</b> rock band. <a href=\"https://www.last.fm/music/Queen\">Read more on Last.fm</a>"}
  }
}`

const trackJSON = `{
  "track": {
    "name": "Yesterday",
    "url": "https://www.last.fm/music/The+Beatles/_/Yesterday",
    "artist": {"name": "The Beatles"},
    "album": {"image": [
      {"#text": "https://img/s.png", "size": "small"},
      {"#text": "https://img/m.png", "size": "medium"},
      {"#text": "https://img/l.png", "size": "large"},
      {"#text": "https://img/xl.png", "size": "extralarge"}
    ]},
    "wiki": {"summary": "A 1965 song. <a href=\"https://www.last.fm/music/The+Beatles/_/Yesterday\">Read more on Last.fm</a>."}
  }
}`

func newTestService(t *testing.T, handler http.HandlerFunc) *LastFMService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewLastFMService(shared.LastFMConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/2.0/",
	}, server.Client())
}

func TestNewLastFMService(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		srv := NewLastFMService(shared.LastFMConfig{APIKey: "k"}, nil)

		if srv.baseURL != defaultLastFMURL {
			t.Errorf("expected default base URL, got %s", srv.baseURL)
		}
		if srv.country != defaultCountry {
			t.Errorf("expected default country, got %s", srv.country)
		}
		if srv.httpClient.Timeout.Seconds() != 10 {
			t.Errorf("expected 10s timeout, got %v", srv.httpClient.Timeout)
		}
		if srv.Name() != "Last.fm" {
			t.Errorf("unexpected name %s", srv.Name())
		}
	})

	t.Run("Custom Client", func(t *testing.T) {
		client := &http.Client{}
		srv := NewLastFMService(shared.LastFMConfig{APIKey: "k", TimeoutSeconds: 3}, client)
		if srv.httpClient != client {
			t.Error("expected custom client to be used")
		}
	})
}

func TestTopTracks(t *testing.T) {
	t.Run("Truncates To Ten In Order", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("method") != "geo.gettoptracks" {
				t.Errorf("expected geo.gettoptracks, got %s", q.Get("method"))
			}
			if q.Get("country") != "united states" {
				t.Errorf("expected country 'united states', got %s", q.Get("country"))
			}
			if q.Get("api_key") != "test-key" || q.Get("format") != "json" {
				t.Errorf("missing api_key/format params: %s", r.URL.RawQuery)
			}

			var items []string
			for i := range 12 {
				items = append(items, fmt.Sprintf(`{"name":"Song %d","artist":{"name":"Artist %d"}}`, i, i))
			}
			fmt.Fprintf(w, `{"tracks":{"track":[%s]}}`, strings.Join(items, ","))
		})

		tracks, err := srv.TopTracks(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 10 {
			t.Fatalf("expected 10 tracks, got %d", len(tracks))
		}
		if tracks[0].Label() != "Song 0 - Artist 0" || tracks[9].Name != "Song 9" {
			t.Errorf("unexpected ordering: %+v", tracks)
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		if _, err := srv.TopTracks(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestArtistInfo(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("artist") != "Queen" {
				t.Errorf("expected artist=Queen, got %s", r.URL.Query().Get("artist"))
			}
			w.Write([]byte(artistJSON))
		})

		info, err := srv.ArtistInfo(context.Background(), "Queen")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if info.Bio != "Queen were a British rock band." {
			t.Errorf("unexpected bio: %q", info.Bio)
		}
		if info.ImageURL != "https://img/large.png" {
			t.Errorf("expected large image, got %s", info.ImageURL)
		}
		if len(info.Similar) != 2 || info.Similar[0] != "David Bowie" {
			t.Errorf("unexpected similar artists: %v", info.Similar)
		}
	})

	t.Run("Unknown Artist", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":6,"message":"The artist you supplied could not be found"}`))
		})

		if _, err := srv.ArtistInfo(context.Background(), "zzzz"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("Missing Required Field", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"artist":{"name":"Queen","image":[{"#text":"x","size":"large"}]}}`))
		})

		if _, err := srv.ArtistInfo(context.Background(), "Queen"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("Empty Fields Are Kept", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"artist":{"name":"","image":[{"#text":"","size":"large"}],"similar":{"artist":[]},"bio":{"summary":""}}}`))
		})

		info, err := srv.ArtistInfo(context.Background(), "Queen")
		if err != nil {
			t.Fatalf("expected present but empty fields to succeed, got %v", err)
		}
		if info.Name != "Queen" {
			t.Errorf("expected name to fall back to the query, got %q", info.Name)
		}
		if info.Bio != "" || info.ImageURL != "" || len(info.Similar) != 0 {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})}
		srv := NewLastFMService(shared.LastFMConfig{APIKey: "k"}, client)

		_, err := srv.ArtistInfo(context.Background(), "Queen")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Missing API Key", func(t *testing.T) {
		srv := NewLastFMService(shared.LastFMConfig{}, nil)
		if _, err := srv.ArtistInfo(context.Background(), "Queen"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Invalid API Key", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":10,"message":"Invalid API key"}`))
		})

		if _, err := srv.ArtistInfo(context.Background(), "Queen"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(artistJSON))
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := srv.ArtistInfo(ctx, "Queen"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for cancelled context, got %v", err)
		}
	})
}

func TestTrackInfo(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("track") != "Yesterday" || q.Get("artist") != "The Beatles" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(trackJSON))
		})

		info, err := srv.TrackInfo(context.Background(), "Yesterday", "The Beatles")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Summary != "A 1965 song." {
			t.Errorf("unexpected summary: %q", info.Summary)
		}
		if info.AlbumArtURL != "https://img/xl.png" {
			t.Errorf("expected extralarge album art, got %s", info.AlbumArtURL)
		}
		if info.Name != "Yesterday" || info.Artist != "The Beatles" {
			t.Errorf("unexpected names: %+v", info)
		}
	})

	t.Run("No Wiki Uses Placeholder", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"track":{"name":"Obscure","url":"https://last.fm/obscure","artist":{"name":"Nobody"}}}`))
		})

		info, err := srv.TrackInfo(context.Background(), "Obscure", "Nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Summary != TrackSummaryPlaceholder+"https://last.fm/obscure" {
			t.Errorf("unexpected placeholder: %q", info.Summary)
		}
		if info.AlbumArtURL != "" {
			t.Errorf("expected no album art, got %s", info.AlbumArtURL)
		}
	})

	t.Run("Unknown Track", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":6,"message":"Track not found"}`))
		})

		if _, err := srv.TrackInfo(context.Background(), "x", "y"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Service Offline", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":11,"message":"Service Offline"}`))
		})

		if _, err := srv.TrackInfo(context.Background(), "x", "y"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"track":`))
		})

		if _, err := srv.TrackInfo(context.Background(), "x", "y"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestCleanSummary(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  hello  ", want: "hello"},
		{name: "tags", in: "<p>a <i>b</i></p>", want: "a b"},
		{name: "read more link", in: `Bio. <a href="x">Read more on Last.fm</a>`, want: "Bio."},
		{name: "read more with period", in: `Bio. <a href="x">Read more on Last.fm</a>.`, want: "Bio."},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSummary(tt.in); got != tt.want {
				t.Errorf("CleanSummary(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPickImage(t *testing.T) {
	images := []lastFMImage{
		{URL: "s", Size: "small"},
		{URL: "m", Size: "medium"},
		{URL: "l", Size: "large"},
		{URL: "xl", Size: ""},
	}

	if got := pickImage(images, "large", 3); got != "l" {
		t.Errorf("expected sized match, got %s", got)
	}
	if got := pickImage(images, "mega", 2); got != "l" {
		t.Errorf("expected second-from-last fallback, got %s", got)
	}
	if got := pickImage(images[:1], "mega", 3); got != "s" {
		t.Errorf("expected last non-empty fallback, got %s", got)
	}
	if got := pickImage(nil, "large", 3); got != "" {
		t.Errorf("expected empty URL, got %s", got)
	}
}
