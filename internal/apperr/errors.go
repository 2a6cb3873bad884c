// Package apperr defines the error taxonomy shared by services and handlers.
// Handlers never expose anything but Kind and Message to clients.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrDirectoryUnavailable = errors.New("symbol directory unavailable")
	ErrSymbolNotFound       = errors.New("symbol not found")
	ErrPartialData          = errors.New("quote details unavailable")
	ErrTransport            = errors.New("error fetching data")
	ErrEmptySymbol          = errors.New("empty symbol")
	ErrInvalidGranularity   = errors.New("invalid granularity")
	ErrFundamentals         = errors.New("fundamentals unavailable")
	ErrChartUnavailable     = errors.New("chart unavailable")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrSessionInvalid       = errors.New("session invalid or expired")
	ErrProviderUnavailable  = errors.New("identity provider unavailable")
)

// ErrorKind names a class of failure visible to clients
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindDirectoryUnavailable ErrorKind = "directory_unavailable"
	KindSymbolNotFound       ErrorKind = "symbol_not_found"
	KindPartialData          ErrorKind = "partial_data_unavailable"
	KindTransport            ErrorKind = "network_failure"
	KindEmptySymbol          ErrorKind = "empty_symbol"
	KindInvalidGranularity   ErrorKind = "invalid_granularity"
	KindFundamentals         ErrorKind = "fundamentals_unavailable"
	KindChartUnavailable     ErrorKind = "chart_unavailable"
	KindAuth                 ErrorKind = "auth_error"
	KindInternal             ErrorKind = "internal"
)

type entry struct {
	err     error
	kind    ErrorKind
	message string
	status  int
}

var table = []entry{
	{ErrEmptySymbol, KindEmptySymbol, "Please enter a stock ticker symbol.", http.StatusBadRequest},
	{ErrSymbolNotFound, KindSymbolNotFound, "Stock not found.", http.StatusNotFound},
	{ErrPartialData, KindPartialData, "Quote details unavailable.", http.StatusOK},
	{ErrInvalidGranularity, KindInvalidGranularity, "Unsupported granularity.", http.StatusBadRequest},
	{ErrFundamentals, KindFundamentals, "Failed to load fundamentals.", http.StatusBadGateway},
	{ErrChartUnavailable, KindChartUnavailable, "Chart data unavailable.", http.StatusBadGateway},
	{ErrDirectoryUnavailable, KindDirectoryUnavailable, "Symbol directory unavailable.", http.StatusServiceUnavailable},
	{ErrInvalidCredentials, KindAuth, "Login failed. Please check credentials.", http.StatusUnauthorized},
	{ErrUsernameTaken, KindAuth, "Signup failed. Username might already exist.", http.StatusConflict},
	{ErrSessionInvalid, KindAuth, "Invalid or expired session.", http.StatusUnauthorized},
	{ErrProviderUnavailable, KindAuth, "Authentication service unavailable.", http.StatusBadGateway},
	{ErrTransport, KindTransport, "Error fetching data", http.StatusBadGateway},
}

func lookup(err error) (entry, bool) {
	for _, e := range table {
		if errors.Is(err, e.err) {
			return e, true
		}
	}
	return entry{}, false
}

// Kind maps err to its ErrorKind. Unknown errors are KindInternal.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if e, ok := lookup(err); ok {
		return e.kind
	}
	return KindInternal
}

// Message maps err to the plain display string shown to users
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := lookup(err); ok {
		return e.message
	}
	return "Something went wrong"
}

// Status maps err to an HTTP status code
func Status(err error) int {
	if e, ok := lookup(err); ok {
		return e.status
	}
	return http.StatusInternalServerError
}
