package models

type OptionChainResp struct {
	Status string       `json:"status"`
	Data   []OptionData `json:"data"` // one element per strike row
}

// OptionData is one strike row of the chain. Both sides live under the same
// row, so a strike alone never identifies a contract; the nested instrument
// keys do.
type OptionData struct {
	Expiry              string         `json:"expiry"`
	Pcr                 float64        `json:"pcr"`
	StrikePrice         float64        `json:"strike_price"`
	UnderlyingKey       string         `json:"underlying_key"`
	UnderlyingSpotPrice float64        `json:"underlying_spot_price"`
	CallOptions         OptionSideData `json:"call_options"`
	PutOptions          OptionSideData `json:"put_options"`
}

// OptionSideData is the CE or PE leg nested under a strike row. Market data
// and greeks stay as loose maps: the provider adds and omits metrics freely,
// and the display layer renders whatever arrives.
type OptionSideData struct {
	InstrumentKey string             `json:"instrument_key"`
	MarketData    map[string]float64 `json:"market_data"`
	OptionGreeks  map[string]float64 `json:"option_greeks"`
}
