package models

// LtpResponse is the market-quote LTP payload, keyed by instrument name.
// Used to backfill the underlying spot price when a chain row omits it.
type LtpResponse struct {
	Status string                    `json:"status"`
	Data   map[string]InstrumentData `json:"data"`
}

type InstrumentData struct {
	LastPrice       float64 `json:"last_price"`
	InstrumentToken string  `json:"instrument_token"`
}
