package model

import (
	"github.com/guregu/null/v5"
)

// CompanyProfile is the subset of the FMP company profile used by the fundamentals panel
type CompanyProfile struct {
	Symbol            string     `json:"symbol"`
	CompanyName       string     `json:"companyName"`
	Currency          string     `json:"currency"`
	Exchange          string     `json:"exchange"`
	ExchangeShortName string     `json:"exchangeShortName"`
	Sector            string     `json:"sector"`
	Industry          string     `json:"industry"`
	Website           string     `json:"website"`
	Description       string     `json:"description"`
	MktCap            null.Float `json:"mktCap"`
	Price             null.Float `json:"price"`
	Beta              null.Float `json:"beta"`
	LastDiv           null.Float `json:"lastDiv"`
	PE                null.Float `json:"pe"`
	EPS               null.Float `json:"eps"`
}

// KeyMetricsTTM is the subset of FMP trailing-twelve-month key metrics
type KeyMetricsTTM struct {
	PERatioTTM       null.Float `json:"peRatioTTM"`
	DividendYieldTTM null.Float `json:"dividendYieldTTM"`
}

// Fundamentals is the display-ready fundamentals panel
type Fundamentals struct {
	Symbol      string          `json:"symbol"`
	Overview    FundamentalsRow `json:"overview"`
	KeyMetrics  MetricsRow      `json:"key_metrics"`
	Description string          `json:"description,omitempty"`
}

// FundamentalsRow is the overview section
type FundamentalsRow struct {
	Company  string `json:"company"`
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
}

// MetricsRow is the key metrics section
type MetricsRow struct {
	MarketCap     string `json:"market_cap"`
	PE            string `json:"pe_ttm"`
	EPS           string `json:"eps_ttm"`
	DividendYield string `json:"dividend_yield"`
	Beta          string `json:"beta"`
}
