package core

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string `json:"category"`
	Amount Money  `json:"amount"`
	Count  int    `json:"count"`
}
