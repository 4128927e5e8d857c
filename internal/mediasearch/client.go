package mediasearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"moviely/internal/config"
	"moviely/internal/logging"
	"moviely/internal/services"
)

const (
	ProviderPexels  = "pexels"
	ProviderPixabay = "pixabay"
	ProviderJamendo = "jamendo"

	MediaVideo = "video"
	MediaImage = "image"
	MediaAudio = "audio"

	MinLimit     = 1
	MaxLimit     = 50
	DefaultLimit = 10

	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "moviely/dev"
)

// Result is one search hit.
type Result struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	PreviewURL string  `json:"preview_url,omitempty"`
	Provider   string  `json:"provider"`
	MediaType  string  `json:"media_type"`
	Duration   float64 `json:"duration,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Title      string  `json:"title,omitempty"`
	Author     string  `json:"author,omitempty"`
}

// Config describes the search client configuration.
type Config struct {
	PexelsAPIKey      string
	PixabayAPIKey     string
	JamendoClientID   string
	PexelsBaseURL     string
	PixabayBaseURL    string
	JamendoBaseURL    string
	DownloadDir       string
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client queries the stock media providers.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client. Provider credentials are checked lazily so a client
// without keys can still serve the providers that are configured.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.PexelsBaseURL == "" {
		cfg.PexelsBaseURL = "https://api.pexels.com"
	}
	if cfg.PixabayBaseURL == "" {
		cfg.PixabayBaseURL = "https://pixabay.com/api"
	}
	if cfg.JamendoBaseURL == "" {
		cfg.JamendoBaseURL = "https://api.jamendo.com/v3.0"
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		cfg:     cfg,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.NewComponentLogger(cfg.Logger, "mediasearch"),
	}
}

// NewFromConfig builds a client from application configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(Config{
		PexelsAPIKey:      cfg.Search.PexelsAPIKey,
		PixabayAPIKey:     cfg.Search.PixabayAPIKey,
		JamendoClientID:   cfg.Search.JamendoClientID,
		PexelsBaseURL:     cfg.Search.PexelsBaseURL,
		PixabayBaseURL:    cfg.Search.PixabayBaseURL,
		JamendoBaseURL:    cfg.Search.JamendoBaseURL,
		DownloadDir:       cfg.Paths.DownloadDir,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: cfg.SearchTimeout()},
		Logger:            logger,
	})
}

// ClampLimit bounds limit to [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	return min(max(limit, MinLimit), MaxLimit)
}

// Search looks up videos or images on provider.
func (c *Client) Search(ctx context.Context, query, provider, mediaType string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "mediasearch", "search", "query is required", nil)
	}
	if mediaType != MediaVideo && mediaType != MediaImage {
		return nil, services.Wrap(services.ErrValidation, "mediasearch", "search",
			fmt.Sprintf("media type must be %q or %q, got %q", MediaVideo, MediaImage, mediaType), nil)
	}
	limit = ClampLimit(limit)
	var (
		results []Result
		err     error
	)
	switch strings.ToLower(provider) {
	case ProviderPexels:
		results, err = c.searchPexels(ctx, query, mediaType, limit)
	case ProviderPixabay:
		results, err = c.searchPixabay(ctx, query, mediaType, limit)
	default:
		return nil, services.Wrap(services.ErrValidation, "mediasearch", "search",
			fmt.Sprintf("unknown provider %q", provider), nil)
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search complete",
		logging.String("provider", provider),
		logging.String("media_type", mediaType),
		logging.String("query", query),
		logging.Int("results", len(results)),
	)
	return results, nil
}

// SearchMusic looks up tracks on Jamendo.
func (c *Client) SearchMusic(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "mediasearch", "search_music", "query is required", nil)
	}
	return c.searchJamendo(ctx, query, ClampLimit(limit))
}

func requireKey(value, provider, env, docs string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "mediasearch", provider,
		fmt.Sprintf("%s is not set; get a key at %s", env, docs), nil)
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, provider, endpoint string, params url.Values, header http.Header, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	target, err := url.Parse(endpoint)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "mediasearch", provider, "parse base url", err)
	}
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrSearch, "mediasearch", provider, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrSearch, "mediasearch", provider, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return services.Wrap(services.ErrSearch, "mediasearch", provider,
			fmt.Sprintf("api error (%s): %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrSearch, "mediasearch", provider, "decode response", err)
	}
	return nil
}

func joinURL(base string, elem ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elem {
		out += "/" + strings.Trim(e, "/")
	}
	return out
}
