package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tracklist/internal/shared"
)

const (
	defaultLastFMURL = "https://ws.audioscrobbler.com/2.0/"
	defaultCountry   = "united states"
	topTrackLimit    = 10

	// TrackSummaryPlaceholder prefixes the summary of tracks Last.fm has no wiki for.
	TrackSummaryPlaceholder = "There is no summary information for this track, sorry! The Last.fm page for the song can be found at "
)

// Last.fm error codes, see https://www.last.fm/api/errorcodes
const (
	lastFMInvalidParameters = 6
	lastFMInvalidAPIKey     = 10
	lastFMServiceOffline    = 11
	lastFMTemporaryError    = 16
	lastFMRateLimited       = 29
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	readMoreMatch = regexp.MustCompile(`(?i)\s*Read more on Last\.fm\.?\s*$`)
)

// LastFMService implements [MetadataService] against the Last.fm JSON API.
type LastFMService struct {
	apiKey     string
	baseURL    string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewLastFMService creates a Last.fm client from cfg.
//
// A nil client gets one with the configured timeout. A non-positive rate limit disables throttling.
func NewLastFMService(cfg shared.LastFMConfig, client *http.Client) *LastFMService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLastFMURL
	}

	country := cfg.Country
	if country == "" {
		country = defaultCountry
	}

	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &LastFMService{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		country:    country,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Name returns the name of the service
func (l *LastFMService) Name() string {
	return "Last.fm"
}

type lastFMImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type lastFMTopTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

type lastFMArtistResponse struct {
	Artist *struct {
		Name  string        `json:"name"`
		Image []lastFMImage `json:"image"`
		Bio   *struct {
			Summary string `json:"summary"`
		} `json:"bio"`
		Similar *struct {
			Artist []struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"similar"`
	} `json:"artist"`
}

type lastFMTrackResponse struct {
	Track *struct {
		Name   string `json:"name"`
		URL    string `json:"url"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album *struct {
			Image []lastFMImage `json:"image"`
		} `json:"album"`
		Wiki *struct {
			Summary string `json:"summary"`
		} `json:"wiki"`
	} `json:"track"`
}

type lastFMError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// TopTracks fetches geo.gettoptracks for the configured country.
func (l *LastFMService) TopTracks(ctx context.Context) ([]TopTrack, error) {
	params := url.Values{}
	params.Set("country", l.country)
	params.Set("limit", fmt.Sprint(topTrackLimit))

	var resp lastFMTopTracksResponse
	if err := l.call(ctx, "geo.gettoptracks", params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]TopTrack, 0, topTrackLimit)
	for _, t := range resp.Tracks.Track {
		if len(tracks) == topTrackLimit {
			break
		}
		tracks = append(tracks, TopTrack{Name: t.Name, Artist: t.Artist.Name})
	}
	return tracks, nil
}

// ArtistInfo fetches artist.getinfo.
//
// A response without a biography, image list, or similar-artist block counts as not found.
func (l *LastFMService) ArtistInfo(ctx context.Context, name string) (*ArtistInfo, error) {
	params := url.Values{}
	params.Set("artist", name)

	var resp lastFMArtistResponse
	if err := l.call(ctx, "artist.getinfo", params, &resp); err != nil {
		if errors.Is(err, errUnknownEntity) {
			return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
		}
		return nil, err
	}

	a := resp.Artist
	if a == nil || a.Bio == nil || a.Similar == nil || len(a.Image) == 0 {
		return nil, fmt.Errorf("%w: %s (incomplete response)", shared.ErrArtistNotFound, name)
	}

	info := &ArtistInfo{
		Name:     a.Name,
		Bio:      CleanSummary(a.Bio.Summary),
		ImageURL: pickImage(a.Image, "large", 3),
		Similar:  make([]string, 0, len(a.Similar.Artist)),
	}
	if info.Name == "" {
		info.Name = name
	}
	for _, s := range a.Similar.Artist {
		info.Similar = append(info.Similar, s.Name)
	}
	return info, nil
}

// TrackInfo fetches track.getinfo. Tracks without a wiki get [TrackSummaryPlaceholder] and their Last.fm URL.
func (l *LastFMService) TrackInfo(ctx context.Context, title, artist string) (*TrackInfo, error) {
	params := url.Values{}
	params.Set("track", title)
	params.Set("artist", artist)

	var resp lastFMTrackResponse
	if err := l.call(ctx, "track.getinfo", params, &resp); err != nil {
		if errors.Is(err, errUnknownEntity) {
			return nil, fmt.Errorf("%w: %s by %s", shared.ErrTrackNotFound, title, artist)
		}
		return nil, err
	}

	t := resp.Track
	if t == nil {
		return nil, fmt.Errorf("%w: %s by %s", shared.ErrTrackNotFound, title, artist)
	}

	info := &TrackInfo{
		Name:   t.Name,
		Artist: t.Artist.Name,
		URL:    t.URL,
	}
	if info.Name == "" {
		info.Name = title
	}
	if info.Artist == "" {
		info.Artist = artist
	}
	if t.Album != nil {
		info.AlbumArtURL = pickImage(t.Album.Image, "extralarge", 2)
	}

	if t.Wiki != nil && strings.TrimSpace(t.Wiki.Summary) != "" {
		info.Summary = CleanSummary(t.Wiki.Summary)
	} else {
		info.Summary = TrackSummaryPlaceholder + t.URL
	}
	return info, nil
}

var errUnknownEntity = errors.New("unknown entity")

// call performs one rate-limited GET for method and decodes the body into result.
//
// Last.fm reports failures as {"error": n, "message": "..."}, sometimes with a 200 status.
func (l *LastFMService) call(ctx context.Context, method string, params url.Values, result any) error {
	if l.apiKey == "" {
		return fmt.Errorf("%w: last.fm api key", shared.ErrMissingCredentials)
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}

	params.Set("method", method)
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	var apiErr lastFMError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return classifyLastFMError(method, apiErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: status %d", shared.ErrAPIRequest, method, resp.StatusCode)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", shared.ErrAPIRequest, method, err)
	}
	return nil
}

func classifyLastFMError(method string, e lastFMError) error {
	switch e.Code {
	case lastFMInvalidParameters:
		return fmt.Errorf("%w: %s", errUnknownEntity, e.Message)
	case lastFMInvalidAPIKey:
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, e.Message)
	case lastFMServiceOffline, lastFMTemporaryError, lastFMRateLimited:
		return fmt.Errorf("%w: %s: %s", shared.ErrServiceUnavailable, method, e.Message)
	default:
		return fmt.Errorf("%w: %s: error %d: %s", shared.ErrAPIRequest, method, e.Code, e.Message)
	}
}

// CleanSummary strips markup from a Last.fm bio or wiki summary, drops the trailing
// "Read more on Last.fm" link text, and trims surrounding whitespace.
func CleanSummary(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = readMoreMatch.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// pickImage returns the URL of the image with the given size, falling back to the
// entry fromEnd positions from the end of the list, then to the last non-empty URL.
func pickImage(images []lastFMImage, size string, fromEnd int) string {
	for _, img := range images {
		if img.Size == size && img.URL != "" {
			return img.URL
		}
	}
	if i := len(images) - fromEnd; i >= 0 && images[i].URL != "" {
		return images[i].URL
	}
	for i := len(images) - 1; i >= 0; i-- {
		if images[i].URL != "" {
			return images[i].URL
		}
	}
	return ""
}
