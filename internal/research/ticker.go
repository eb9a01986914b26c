package research

import "regexp"

// Matches US-style tickers (AAPL, BRK.A) and 6-digit KRX codes
// (005930, 005930.KS), with an optional market suffix.
var tickerRE = regexp.MustCompile(`\b([A-Z]{1,5}(?:\.[A-Z]{2,4})?|\d{6}(?:\.[A-Z]{2,4})?)\b`)

// LooksLikeTicker reports whether the query contains something shaped
// like a stock symbol.
func LooksLikeTicker(query string) bool {
	return tickerRE.MatchString(query)
}
