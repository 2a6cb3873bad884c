// Package dashboard holds the per-session dashboard state and the keyed
// fetches that update it.
package dashboard

import (
	"strings"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
)

// maxQueryLength matches the ticker input limit
const maxQueryLength = 5

// View is the panel shown under the price card
type View string

// Views
const (
	ViewChart        View = "chart"
	ViewFundamentals View = "fundamentals"
)

// ParseView validates a view name
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewChart, ViewFundamentals:
		return View(s), true
	}
	return "", false
}

// SelectionKey identifies the selection a fetch was issued under. Results
// carrying any other key are stale.
type SelectionKey struct {
	Symbol      string             `json:"symbol"`
	Granularity market.Granularity `json:"granularity"`
	Seq         uint64             `json:"seq"`
}

// Result is the outcome of a keyed fetch. A nil Quote keeps the current one.
// ChartErr is set when the quote succeeded but the chart did not.
type Result struct {
	Quote    *model.StockQuote
	Chart    *model.Chart
	ChartErr error
}

// State is the dashboard as a value. It only changes through the transition
// methods, each of which returns a new State.
type State struct {
	SelectedSymbol  string             `json:"selected_symbol"`
	ConfirmedSymbol string             `json:"confirmed_symbol"`
	CompanyName     string             `json:"company_name"`
	Granularity     market.Granularity `json:"granularity"`
	ActiveView      View               `json:"active_view"`
	Quote           *model.StockQuote  `json:"quote,omitempty"`
	Chart           *model.Chart       `json:"chart,omitempty"`
	ErrorKind       apperr.ErrorKind   `json:"error_kind,omitempty"`
	Message         string             `json:"message,omitempty"`
	Pending         bool               `json:"pending"`
	Key             SelectionKey       `json:"key"`
}

// NewState returns the initial dashboard
func NewState() State {
	return State{
		Granularity: market.DefaultGranularity,
		ActiveView:  ViewChart,
	}
}

// Type records the text in the ticker input
func (s State) Type(query string) State {
	query = strings.ToUpper(strings.TrimSpace(query))
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}
	s.SelectedSymbol = query
	return s
}

// Confirm starts a lookup of symbol, or of the typed text when symbol is
// empty. An empty lookup fails immediately and clears the shown stock.
func (s State) Confirm(symbol string) State {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = s.SelectedSymbol
	}
	if symbol == "" {
		s = s.clear()
		s.Key = SelectionKey{Granularity: s.Granularity, Seq: s.Key.Seq + 1}
		s.Pending = false
		s.ErrorKind = apperr.Kind(apperr.ErrEmptySymbol)
		s.Message = apperr.Message(apperr.ErrEmptySymbol)
		return s
	}

	s.SelectedSymbol = symbol
	s.Key = SelectionKey{Symbol: symbol, Granularity: s.Granularity, Seq: s.Key.Seq + 1}
	s.Pending = true
	return s
}

// SelectGranularity changes the chart granularity. With a confirmed or
// pending symbol this starts a new fetch for it.
func (s State) SelectGranularity(g market.Granularity) State {
	s.Granularity = g

	symbol := s.ConfirmedSymbol
	if s.Pending && s.Key.Symbol != "" {
		symbol = s.Key.Symbol
	}
	if symbol == "" {
		return s
	}
	s.Key = SelectionKey{Symbol: symbol, Granularity: g, Seq: s.Key.Seq + 1}
	s.Pending = true
	return s
}

// NeedsQuote reports whether the pending fetch must also load a quote
func (s State) NeedsQuote() bool {
	return s.Quote == nil || s.Key.Symbol != s.ConfirmedSymbol
}

// SwitchView changes the active panel
func (s State) SwitchView(v View) State {
	s.ActiveView = v
	return s
}

// Resolve applies a fetch result. It reports false and leaves s unchanged
// when key is stale.
func (s State) Resolve(key SelectionKey, r Result) (State, bool) {
	if key != s.Key || !s.Pending {
		return s, false
	}

	s.Pending = false
	s.ConfirmedSymbol = key.Symbol
	s.ErrorKind = apperr.KindNone
	s.Message = ""
	if r.Quote != nil {
		s.Quote = r.Quote
		s.CompanyName = r.Quote.CompanyName
	}
	s.Chart = r.Chart
	if s.Quote != nil && s.Quote.Warning != "" {
		s.ErrorKind = apperr.KindPartialData
		s.Message = s.Quote.Warning
	}
	if r.ChartErr != nil {
		s.Chart = nil
		s.ErrorKind = apperr.Kind(r.ChartErr)
		s.Message = apperr.Message(r.ChartErr)
	}
	return s, true
}

// Fail applies a quote failure, clearing the previously shown stock. It
// reports false and leaves s unchanged when key is stale.
func (s State) Fail(key SelectionKey, err error) (State, bool) {
	if key != s.Key || !s.Pending {
		return s, false
	}

	s = s.clear()
	s.Pending = false
	s.ErrorKind = apperr.Kind(err)
	s.Message = apperr.Message(err)
	return s, true
}

func (s State) clear() State {
	s.ConfirmedSymbol = ""
	s.CompanyName = ""
	s.Quote = nil
	s.Chart = nil
	return s
}
