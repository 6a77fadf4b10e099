package models

// Badge describes an achievement that can be shown to the child
type Badge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	// Game is empty for badges earned across the whole profile
	Game GameID `json:"game,omitempty"`
}
