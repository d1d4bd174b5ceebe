package models

// InstrumentRecord is one row of the NSE instrument master after
// normalization. Expiry carries the display form shown on the selection
// screen ("27JUN2025"); ExpiryISO carries the same date as yyyy-mm-dd,
// which is what the option-chain endpoint expects.
type InstrumentRecord struct {
	InstrumentKey  string  `json:"instrument_key"`
	AssetKey       string  `json:"asset_key"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Expiry         string  `json:"expiry"`
	ExpiryISO      string  `json:"expiry_iso"`
	StrikePrice    float64 `json:"strike_price"`
	InstrumentType string  `json:"instrument_type"` // OPTSTK, OPTIDX, EQ, CE, PE
	Exchange       string  `json:"exchange"`
}
