// Package symbols holds the in-memory symbol directory and answers prefix
// lookups against it.
package symbols

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Noviath61/finsight/internal/model"
)

// MaxMatches caps the number of suggestions returned by Match
const MaxMatches = 5

var (
	tickerPattern   = regexp.MustCompile(`^[A-Z]{1,5}$`)
	restrictedClass = regexp.MustCompile(`(?i)R[0-9]$`)
	excludedNames   = regexp.MustCompile(`(?i)fund|idx|mutual|retirement|class|growth|etn|index|admiral|preferred|strategic advisers|institutional|series|rate|%|coupon|trust`)
)

// SupportedExchanges are the venues a suggestion may be listed on
var SupportedExchanges = []string{"NYSE", "NASDAQ", "AMEX"}

// Index is an immutable snapshot of the symbol directory, ordered by
// descending market cap. It is safe for concurrent readers.
type Index struct {
	records  []model.SymbolRecord
	bySymbol map[string]int
}

// Load builds an index from raw directory records. Records without a market
// cap are dropped; the rest are sorted by market cap, largest first.
func Load(raw []model.RawSymbol) *Index {
	records := make([]model.SymbolRecord, 0, len(raw))
	for _, r := range raw {
		if !r.MarketCap.Valid || r.MarketCap.Float64 == 0 {
			continue
		}
		records = append(records, model.SymbolRecord{
			Symbol:      r.Symbol,
			CompanyName: r.CompanyName,
			Exchange:    r.ExchangeShortName,
			MarketCap:   r.MarketCap.Float64,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarketCap > records[j].MarketCap
	})

	bySymbol := make(map[string]int, len(records))
	for i, r := range records {
		if _, exists := bySymbol[r.Symbol]; !exists {
			bySymbol[r.Symbol] = i
		}
	}

	return &Index{records: records, bySymbol: bySymbol}
}

// Empty returns an index with no records
func Empty() *Index {
	return Load(nil)
}

// Len returns the number of records in the index
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// Records returns a copy of the indexed records in index order
func (ix *Index) Records() []model.SymbolRecord {
	if ix == nil {
		return nil
	}
	out := make([]model.SymbolRecord, len(ix.records))
	copy(out, ix.records)
	return out
}

// Lookup finds the record for an exact symbol
func (ix *Index) Lookup(symbol string) (model.SymbolRecord, bool) {
	if ix == nil {
		return model.SymbolRecord{}, false
	}
	i, ok := ix.bySymbol[symbol]
	if !ok {
		return model.SymbolRecord{}, false
	}
	return ix.records[i], true
}

// Match returns up to MaxMatches common-stock records whose symbol starts
// with query, in index order.
func (ix *Index) Match(query string) []model.SymbolRecord {
	matches := []model.SymbolRecord{}
	if query == "" || ix == nil {
		return matches
	}

	prefix := strings.ToUpper(query)
	for _, r := range ix.records {
		if !Eligible(r, prefix) {
			continue
		}
		matches = append(matches, r)
		if len(matches) == MaxMatches {
			break
		}
	}
	return matches
}

// Match is a convenience wrapper over (*Index).Match
func Match(ix *Index, query string) []model.SymbolRecord {
	return ix.Match(query)
}

// Eligible reports whether r is a suggestion for an upper-cased prefix
func Eligible(r model.SymbolRecord, prefix string) bool {
	return strings.HasPrefix(strings.ToUpper(r.Symbol), prefix) &&
		tickerPattern.MatchString(r.Symbol) &&
		!strings.Contains(r.Symbol, ".") &&
		isSupportedExchange(r.Exchange) &&
		!excludedNames.MatchString(r.CompanyName) &&
		!restrictedClass.MatchString(r.Symbol)
}

func isSupportedExchange(exchange string) bool {
	for _, e := range SupportedExchanges {
		if e == exchange {
			return true
		}
	}
	return false
}
