package model

// Player is one tracked entry in a market player list.
type Player struct {
	PlayerName  string `json:"player_name"`
	OfficialURL string `json:"official_url,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Notes       string `json:"notes,omitempty"`
}
