package model

// DailyStats holds totals for one UTC calendar day.
type DailyStats struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
	Messages     int64   `json:"messages"`
}

// HourlyStats holds totals for one UTC hour of day.
type HourlyStats struct {
	Hour     int   `json:"hour"`
	Tokens   int64 `json:"tokens"`
	Messages int64 `json:"messages"`
}

// NamedTotal is a token/cost total for a model or project.
type NamedTotal struct {
	Name   string  `json:"name"`
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// ChartData feeds time-series and breakdown charts.
type ChartData struct {
	Daily     []DailyStats  `json:"daily"`
	Hourly    []HourlyStats `json:"hourly"`
	ByModel   []NamedTotal  `json:"by_model"`
	ByProject []NamedTotal  `json:"by_project"`
}
