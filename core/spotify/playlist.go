package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jamjar/logger"
	"jamjar/model"
)

// trackPayload mirrors the provider's track object, trimmed to the fields
// the front-end needs.
type trackPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	DurationMS int `json:"duration_ms"`
}

func (t trackPayload) toModel() model.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return model.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
	}
}

// PlaylistTracks fetches every track currently in the playlist, following
// the provider's pagination.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, accessToken string) ([]model.Track, error) {
	logger.Info("[PlaylistTracks] fetching playlist tracks", logger.String("playlist_id", playlistID))

	var tracks []model.Track
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100", url.PathEscape(playlistID))

	for endpoint != "" {
		var page struct {
			Items []struct {
				Track trackPayload `json:"track"`
			} `json:"items"`
			Next *string `json:"next"`
		}
		if err := c.doRequest(ctx, http.MethodGet, endpoint, accessToken, nil, &page); err != nil {
			logger.Error("[PlaylistTracks] request failed",
				logger.String("playlist_id", playlistID), logger.ErrorField(err))
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.ID == "" {
				continue // local or removed tracks come back without an id
			}
			tracks = append(tracks, item.Track.toModel())
		}

		endpoint = ""
		if page.Next != nil && *page.Next != "" {
			// The next link is absolute; strip the base so doRequest can
			// re-attach it (keeps test servers working too).
			if rest, found := strings.CutPrefix(*page.Next, c.baseURL); found {
				endpoint = rest
			}
		}
	}

	logger.Info("[PlaylistTracks] fetched playlist tracks",
		logger.String("playlist_id", playlistID), logger.Int("track_count", len(tracks)))
	return tracks, nil
}

// AppendTrack appends one track to the playlist.
func (c *Client) AppendTrack(ctx context.Context, playlistID, accessToken, trackID string) error {
	logger.Info("[AppendTrack] appending track",
		logger.String("playlist_id", playlistID), logger.String("track_id", trackID))

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string][]string{
		"uris": {"spotify:track:" + trackID},
	}
	if err := c.doRequest(ctx, http.MethodPost, endpoint, accessToken, body, nil); err != nil {
		logger.Error("[AppendTrack] request failed",
			logger.String("playlist_id", playlistID), logger.String("track_id", trackID), logger.ErrorField(err))
		return err
	}
	return nil
}

// Search queries the catalog for tracks.
func (c *Client) Search(ctx context.Context, accessToken, query string, limit int) ([]model.Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	endpoint := fmt.Sprintf("/search?type=track&q=%s&limit=%d", url.QueryEscape(query), limit)

	var result struct {
		Tracks struct {
			Items []trackPayload `json:"items"`
		} `json:"tracks"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpoint, accessToken, nil, &result); err != nil {
		logger.Error("[Search] request failed", logger.String("query", query), logger.ErrorField(err))
		return nil, err
	}

	tracks := make([]model.Track, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		tracks = append(tracks, item.toModel())
	}
	return tracks, nil
}
