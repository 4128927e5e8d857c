package mediasearch

import (
	"context"
	"net/url"
	"strconv"
)

// Pixabay rejects per_page values below this.
const pixabayMinPerPage = 3

type pixabayRendition struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type pixabayHit struct {
	ID            int64   `json:"id"`
	Tags          string  `json:"tags"`
	User          string  `json:"user"`
	Duration      float64 `json:"duration"`
	LargeImageURL string  `json:"largeImageURL"`
	PreviewURL    string  `json:"previewURL"`
	ImageWidth    int     `json:"imageWidth"`
	ImageHeight   int     `json:"imageHeight"`
	Videos        struct {
		Large  *pixabayRendition `json:"large"`
		Medium *pixabayRendition `json:"medium"`
	} `json:"videos"`
}

func (c *Client) searchPixabay(ctx context.Context, query, mediaType string, limit int) ([]Result, error) {
	if err := requireKey(c.cfg.PixabayAPIKey, ProviderPixabay, "PIXABAY_API_KEY", "https://pixabay.com/api/docs/"); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("key", c.cfg.PixabayAPIKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(max(limit, pixabayMinPerPage)))

	endpoint := joinURL(c.cfg.PixabayBaseURL) + "/"
	if mediaType == MediaVideo {
		endpoint = joinURL(c.cfg.PixabayBaseURL, "videos") + "/"
	}
	var payload struct {
		Hits []pixabayHit `json:"hits"`
	}
	if err := c.getJSON(ctx, ProviderPixabay, endpoint, params, nil, &payload); err != nil {
		return nil, err
	}
	hits := payload.Hits
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		result := Result{
			ID:       strconv.FormatInt(hit.ID, 10),
			Provider: ProviderPixabay,
			Title:    hit.Tags,
			Author:   hit.User,
		}
		if mediaType == MediaVideo {
			rendition := hit.Videos.Large
			if rendition == nil || rendition.URL == "" {
				rendition = hit.Videos.Medium
			}
			if rendition == nil {
				rendition = &pixabayRendition{}
			}
			result.MediaType = MediaVideo
			result.URL = rendition.URL
			result.PreviewURL = rendition.Thumbnail
			result.Width = rendition.Width
			result.Height = rendition.Height
			result.Duration = hit.Duration
		} else {
			result.MediaType = MediaImage
			result.URL = hit.LargeImageURL
			result.PreviewURL = hit.PreviewURL
			result.Width = hit.ImageWidth
			result.Height = hit.ImageHeight
		}
		results = append(results, result)
	}
	return results, nil
}
