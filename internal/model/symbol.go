package model

import (
	"github.com/guregu/null/v5"
)

// RawSymbol is one entry of the vendor symbol directory (FMP stock screener)
type RawSymbol struct {
	Symbol            string     `json:"symbol" db:"symbol"`
	CompanyName       string     `json:"companyName" db:"company_name"`
	ExchangeShortName string     `json:"exchangeShortName" db:"exchange"`
	MarketCap         null.Float `json:"marketCap" db:"market_cap"`
}

// SymbolRecord represents a tradable instrument held by the symbol index
type SymbolRecord struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Exchange    string  `json:"exchange"`
	MarketCap   float64 `json:"market_cap"`
}

// SymbolSearchResponse is returned by the symbol search endpoint
type SymbolSearchResponse struct {
	Query   string         `json:"query"`
	Results []SymbolRecord `json:"results"`
}
