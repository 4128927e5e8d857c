package mediasearch

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	pexelsSlugPattern = regexp.MustCompile(`/video/([^/]+)-\d+/?$`)
	titleCaser        = cases.Title(language.English)
)

type pexelsVideoFile struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type pexelsUser struct {
	Name string `json:"name"`
}

type pexelsVideo struct {
	ID       int64             `json:"id"`
	URL      string            `json:"url"`
	Image    string            `json:"image"`
	Duration float64           `json:"duration"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	User     pexelsUser        `json:"user"`
	Files    []pexelsVideoFile `json:"video_files"`
}

type pexelsPhoto struct {
	ID           int64  `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Src          struct {
		Original string `json:"original"`
		Medium   string `json:"medium"`
	} `json:"src"`
}

func (c *Client) searchPexels(ctx context.Context, query, mediaType string, limit int) ([]Result, error) {
	if err := requireKey(c.cfg.PexelsAPIKey, ProviderPexels, "PEXELS_API_KEY", "https://www.pexels.com/api/"); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(limit))
	header := http.Header{}
	header.Set("Authorization", c.cfg.PexelsAPIKey)

	if mediaType == MediaVideo {
		var payload struct {
			Videos []pexelsVideo `json:"videos"`
		}
		if err := c.getJSON(ctx, ProviderPexels, joinURL(c.cfg.PexelsBaseURL, "videos", "search"), params, header, &payload); err != nil {
			return nil, err
		}
		results := make([]Result, 0, len(payload.Videos))
		for _, video := range payload.Videos {
			best, ok := selectBestVideoFile(video.Files)
			if !ok {
				continue
			}
			results = append(results, Result{
				ID:         strconv.FormatInt(video.ID, 10),
				URL:        best.Link,
				PreviewURL: video.Image,
				Provider:   ProviderPexels,
				MediaType:  MediaVideo,
				Duration:   video.Duration,
				Width:      video.Width,
				Height:     video.Height,
				Title:      pexelsTitle(video.URL),
				Author:     video.User.Name,
			})
		}
		return results, nil
	}

	var payload struct {
		Photos []pexelsPhoto `json:"photos"`
	}
	if err := c.getJSON(ctx, ProviderPexels, joinURL(c.cfg.PexelsBaseURL, "v1", "search"), params, header, &payload); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(payload.Photos))
	for _, photo := range payload.Photos {
		results = append(results, Result{
			ID:         strconv.FormatInt(photo.ID, 10),
			URL:        photo.Src.Original,
			PreviewURL: photo.Src.Medium,
			Provider:   ProviderPexels,
			MediaType:  MediaImage,
			Width:      photo.Width,
			Height:     photo.Height,
			Title:      photo.Alt,
			Author:     photo.Photographer,
		})
	}
	return results, nil
}

// selectBestVideoFile picks the 1080p rendition when present, otherwise the
// tallest one.
func selectBestVideoFile(files []pexelsVideoFile) (pexelsVideoFile, bool) {
	if len(files) == 0 {
		return pexelsVideoFile{}, false
	}
	sorted := append([]pexelsVideoFile(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Height > sorted[j].Height })
	for _, f := range sorted {
		if f.Height == 1080 {
			return f, true
		}
	}
	return sorted[0], true
}

// pexelsTitle derives a title from a page URL such as
// https://www.pexels.com/video/waves-on-the-beach-12345/.
func pexelsTitle(pageURL string) string {
	match := pexelsSlugPattern.FindStringSubmatch(pageURL)
	if match == nil {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(match[1], "-", " "))
}
