package mediasearch

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

type jamendoTrack struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	ArtistName    string      `json:"artist_name"`
	Duration      float64     `json:"duration"`
	Audio         string      `json:"audio"`
	AudioDownload string      `json:"audiodownload"`
}

func (c *Client) searchJamendo(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := requireKey(c.cfg.JamendoClientID, ProviderJamendo, "JAMENDO_CLIENT_ID", "https://developer.jamendo.com/"); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("client_id", c.cfg.JamendoClientID)
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")

	var payload struct {
		Results []jamendoTrack `json:"results"`
	}
	if err := c.getJSON(ctx, ProviderJamendo, joinURL(c.cfg.JamendoBaseURL, "tracks")+"/", params, nil, &payload); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(payload.Results))
	for _, track := range payload.Results {
		results = append(results, Result{
			ID:         track.ID.String(),
			URL:        track.AudioDownload,
			PreviewURL: track.Audio,
			Provider:   ProviderJamendo,
			MediaType:  MediaAudio,
			Duration:   track.Duration,
			Title:      track.Name,
			Author:     track.ArtistName,
		})
	}
	return results, nil
}
