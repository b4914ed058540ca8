package handlers

// LoginRequest represents a JSON login
type LoginRequest struct {
	Number   string `json:"number"`
	Password string `json:"password"`
}

// RelaySearchRequest asks for the best teams from a selection of swimmers
type RelaySearchRequest struct {
	SwimmerIDs []string `json:"swimmer_ids"`
	Ruleset    string   `json:"ruleset"`
	Mode       string   `json:"mode"`
	Gender     string   `json:"gender"`
}

// RelayConfirmRequest confirms one of the last search results by its index
type RelayConfirmRequest struct {
	Index *int `json:"index"`
}

// TimeTrialRequest represents a time trial entered by a coach
type TimeTrialRequest struct {
	SwimmerID string `json:"swimmer_id"`
	Stroke    string `json:"stroke"`
	Distance  int    `json:"distance"`
	Time      string `json:"time"`
	Date      string `json:"date"`
	VenueID   string `json:"venue_id"`
}

// RelayResultRequest represents a relay result entered by a coach
type RelayResultRequest struct {
	MemberIDs []string `json:"member_ids"`
	Time      string   `json:"time"`
	VenueID   string   `json:"venue_id"`
	Date      string   `json:"date"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL        string `json:"base_url"`
	DefaultRuleset string `json:"default_ruleset"`
}
