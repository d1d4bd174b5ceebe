package catalog

import (
	"errors"
	"fmt"
	"strings"

	"optionanalyzer/models"
)

// ErrNoMatch means no master row satisfied all four selection predicates.
var ErrNoMatch = errors.New("no instrument matches the selection")

// Resolution carries the provider identifiers for one resolved contract.
// InstrumentKey names the contract itself; AssetKey names the underlying and
// expiry grouping the chain endpoint is queried by.
type Resolution struct {
	InstrumentKey string
	AssetKey      string
	ExpiryISO     string
	Record        models.InstrumentRecord
}

// Resolve finds the master row for a selection. Matching is exact equality on
// all four fields after normalization: strikes in the master are whole-number
// values, so no tolerance is applied. When duplicate master rows match, the
// lowest instrument_key wins so repeated calls stay deterministic.
func (c *Catalog) Resolve(underlying, expiry string, strike float64, side string) (*Resolution, error) {
	side = strings.ToUpper(strings.TrimSpace(side))
	if side != "CE" && side != "PE" {
		return nil, fmt.Errorf("catalog: invalid option side %q: %w", side, ErrNoMatch)
	}
	expiry = strings.ToUpper(strings.TrimSpace(expiry))

	var best *models.InstrumentRecord
	for i := range c.records {
		r := &c.records[i]
		if r.InstrumentType != side || r.Name != underlying ||
			r.Expiry != expiry || r.StrikePrice != strike {
			continue
		}
		if best == nil || r.InstrumentKey < best.InstrumentKey {
			best = r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("catalog: %s %s %v %s: %w", underlying, expiry, strike, side, ErrNoMatch)
	}
	return &Resolution{
		InstrumentKey: best.InstrumentKey,
		AssetKey:      best.AssetKey,
		ExpiryISO:     best.ExpiryISO,
		Record:        *best,
	}, nil
}
