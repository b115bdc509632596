package models

// Requests for the pipeline HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	From   string `query:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"required,datetime=2006-01-02"`
	Limit  int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type SummaryRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	From   string `query:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"required,datetime=2006-01-02"`
}

type ContinuousRequest struct {
	From       string `query:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To         string `query:"to" json:"to" validate:"required,datetime=2006-01-02"`
	Indicators bool   `query:"indicators" json:"indicators" default:"true"`
	Limit      int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=100000"`
}

type RunRequest struct {
	From    string   `json:"from" validate:"required,datetime=2006-01-02"`
	To      string   `json:"to" validate:"required,datetime=2006-01-02"`
	Symbols []string `json:"symbols" validate:"omitempty,dive,min=1"`
}
