// Package catalog loads the NSE instrument master, caches it per session,
// and resolves a user's (underlying, expiry, strike, side) selection to the
// provider identifiers the option-chain endpoint needs.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"optionanalyzer/models"
)

// expiryLayout renders dates the way the screens show them: "27JUN2025".
const expiryLayout = "02Jan2006"

// Catalog is an immutable snapshot of the normalized instrument master.
// It is never mutated after construction; a refresh builds a new one and
// swaps the pointer, so concurrent readers never see a partial load.
type Catalog struct {
	records []models.InstrumentRecord
	drops   map[string]int
}

func newCatalog(records []models.InstrumentRecord, drops map[string]int) *Catalog {
	return &Catalog{records: records, drops: drops}
}

func (c *Catalog) Len() int { return len(c.records) }

// Drops reports how many raw rows were discarded per reason during the load.
func (c *Catalog) Drops() map[string]int {
	out := make(map[string]int, len(c.drops))
	for k, v := range c.drops {
		out[k] = v
	}
	return out
}

// Underlyings returns the distinct underlying names, sorted lexicographically.
func (c *Catalog) Underlyings() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range c.records {
		n := c.records[i].Name
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Expiries returns the distinct expiries for an underlying, sorted
// chronologically. "2JAN2025" comes before "15JAN2025" even though the
// lexicographic order says otherwise.
func (c *Catalog) Expiries(underlying string) []string {
	seen := make(map[string]bool)
	var expiries []string
	for i := range c.records {
		r := &c.records[i]
		if r.Name != underlying || r.Expiry == "" || seen[r.Expiry] {
			continue
		}
		seen[r.Expiry] = true
		expiries = append(expiries, r.Expiry)
	}
	sort.Slice(expiries, func(i, j int) bool {
		ti, erri := ParseExpiry(expiries[i])
		tj, errj := ParseExpiry(expiries[j])
		if erri != nil || errj != nil {
			return expiries[i] < expiries[j]
		}
		return ti.Before(tj)
	})
	return expiries
}

// Strikes returns the distinct strikes for an underlying and expiry, sorted
// numerically ascending.
func (c *Catalog) Strikes(underlying, expiry string) []float64 {
	expiry = strings.ToUpper(strings.TrimSpace(expiry))
	seen := make(map[float64]bool)
	var strikes []float64
	for i := range c.records {
		r := &c.records[i]
		if r.Name != underlying || r.Expiry != expiry || seen[r.StrikePrice] {
			continue
		}
		seen[r.StrikePrice] = true
		strikes = append(strikes, r.StrikePrice)
	}
	sort.Float64s(strikes)
	return strikes
}

func formatExpiry(t time.Time) string {
	return strings.ToUpper(t.Format(expiryLayout))
}

// ParseExpiry reads a display-form expiry ("27JUN2025", padded or not) back
// into a date. The month arrives uppercased, which time.Parse refuses, so the
// month part is re-cased first.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := strings.IndexFunc(s, unicode.IsLetter)
	if i < 0 || len(s) < i+3 {
		return time.Time{}, fmt.Errorf("catalog: malformed expiry %q", s)
	}
	norm := s[:i+1] + strings.ToLower(s[i+1:i+3]) + s[i+3:]
	return time.Parse("2Jan2006", norm)
}
