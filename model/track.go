package model

// Track is the simplified catalog track shape returned to the
// contributor front-end by the search and playlist proxy endpoints.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int      `json:"durationMs"`
}
