package models

// WeatherCondition is a per-day forecast bucket.
type WeatherCondition string

const (
	WeatherSunny    WeatherCondition = "sunny"
	WeatherCloudy   WeatherCondition = "cloudy"
	WeatherRainy    WeatherCondition = "rainy"
	WeatherStormy   WeatherCondition = "stormy"
	WeatherVeryHot  WeatherCondition = "very_hot"
	WeatherVeryCold WeatherCondition = "very_cold"
)

// IsSevere reports whether the condition forces outdoor activities indoors
// absent an explicit allow-list.
func (c WeatherCondition) IsSevere() bool {
	return c == WeatherRainy || c == WeatherStormy
}

// WeatherAssignment maps a date to a condition. Ephemeral input, never
// persisted by the core.
type WeatherAssignment struct {
	Date      string           `json:"date"`
	Condition WeatherCondition `json:"condition"`
	Source    string           `json:"source"` // manual|forecast
}

// Substitution proposes replacing a weather-incompatible activity. Proposals
// never mutate the grid; applying one is an ordinary slot update.
type Substitution struct {
	SlotID               string  `json:"slot_id"`
	OriginalActivityID   string  `json:"original_activity_id"`
	OriginalActivityName string  `json:"original_activity_name"`
	SubstituteActivityID string  `json:"substitute_activity_id"`
	SubstituteName       string  `json:"substitute_activity_name"`
	FacilityID           *string `json:"facility_id,omitempty"`
	Reason               string  `json:"reason"`
}
