package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"optionanalyzer/models"
)

// sampleLegs has one strike shared by both sides plus a second strike, which
// is exactly the shape that makes strike-only matching wrong.
func sampleLegs() []models.OptionData {
	return []models.OptionData{
		{
			StrikePrice:         18500,
			UnderlyingSpotPrice: 18620.5,
			CallOptions: models.OptionSideData{
				InstrumentKey: "NSE_FO|CE18500",
				MarketData:    map[string]float64{"ltp": 142.3, "volume": 120000, "oi": 98000},
				OptionGreeks:  map[string]float64{"delta": 0.55, "theta": -4.1},
			},
			PutOptions: models.OptionSideData{
				InstrumentKey: "NSE_FO|PE18500",
				MarketData:    map[string]float64{"ltp": 96.7},
				OptionGreeks:  map[string]float64{"delta": -0.45},
			},
		},
		{
			StrikePrice: 18600,
			CallOptions: models.OptionSideData{InstrumentKey: "NSE_FO|CE18600"},
			PutOptions:  models.OptionSideData{InstrumentKey: "NSE_FO|PE18600"},
		},
	}
}

func TestMatchLegPicksSideByInstrumentKey(t *testing.T) {
	legs := sampleLegs()

	leg, err := MatchLeg(legs, 18500, "CE", "NSE_FO|CE18500")
	if err != nil {
		t.Fatalf("MatchLeg CE: %v", err)
	}
	if leg.InstrumentKey != "NSE_FO|CE18500" {
		t.Errorf("matched %q, want the CE leg", leg.InstrumentKey)
	}
	if leg.MarketData["ltp"] != 142.3 {
		t.Errorf("ltp = %v, want 142.3", leg.MarketData["ltp"])
	}
	if leg.SpotPrice != 18620.5 {
		t.Errorf("spot = %v, want 18620.5", leg.SpotPrice)
	}

	// Same strike, other side: must land on the PE leg, never the CE one.
	pleg, err := MatchLeg(legs, 18500, "PE", "NSE_FO|PE18500")
	if err != nil {
		t.Fatalf("MatchLeg PE: %v", err)
	}
	if pleg.InstrumentKey != "NSE_FO|PE18500" {
		t.Errorf("matched %q, want the PE leg", pleg.InstrumentKey)
	}
}

func TestMatchLegRequiresBothKeys(t *testing.T) {
	legs := sampleLegs()

	// Right strike, wrong instrument key for the side.
	if _, err := MatchLeg(legs, 18500, "CE", "NSE_FO|PE18500"); !errors.Is(err, ErrNoLegMatch) {
		t.Errorf("strike-only match must fail, got %v", err)
	}
	// Right instrument key, wrong strike.
	if _, err := MatchLeg(legs, 18600, "CE", "NSE_FO|CE18500"); !errors.Is(err, ErrNoLegMatch) {
		t.Errorf("key-only match must fail, got %v", err)
	}
	if _, err := MatchLeg(legs, 18500, "XX", "NSE_FO|CE18500"); !errors.Is(err, ErrNoLegMatch) {
		t.Errorf("invalid side must fail, got %v", err)
	}
	if _, err := MatchLeg(nil, 18500, "CE", "NSE_FO|CE18500"); !errors.Is(err, ErrNoLegMatch) {
		t.Errorf("empty chain must fail, got %v", err)
	}
}

func TestMatchLegToleratesMissingMaps(t *testing.T) {
	legs := []models.OptionData{
		{
			StrikePrice: 3000,
			CallOptions: models.OptionSideData{InstrumentKey: "NSE_FO|53001"},
		},
	}
	leg, err := MatchLeg(legs, 3000, "CE", "NSE_FO|53001")
	if err != nil {
		t.Fatalf("MatchLeg: %v", err)
	}
	if leg.MarketData != nil || leg.OptionGreeks != nil {
		t.Errorf("expected nil maps to pass through, got %v / %v", leg.MarketData, leg.OptionGreeks)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("instrument_key"); got != "NSE_EQ|INE002A01018" {
			t.Errorf("instrument_key = %q", got)
		}
		if got := r.URL.Query().Get("expiry_date"); got != "2025-06-27" {
			t.Errorf("expiry_date = %q", got)
		}
		fmt.Fprint(w, `{"status":"success","data":[
			{"strike_price":3000,"underlying_spot_price":2980,
			 "call_options":{"instrument_key":"NSE_FO|53001","market_data":{"ltp":120.5},"option_greeks":{"delta":0.62}},
			 "put_options":{"instrument_key":"NSE_FO|53002","market_data":{"ltp":88.1},"option_greeks":{"delta":-0.38}}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	legs, err := c.Fetch(context.Background(), "tok123", "NSE_EQ|INE002A01018", "2025-06-27")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(legs))
	}
	if legs[0].CallOptions.MarketData["ltp"] != 120.5 {
		t.Errorf("ltp = %v, want 120.5", legs[0].CallOptions.MarketData["ltp"])
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	_, err := c.Fetch(context.Background(), "bad", "NSE_EQ|X", "2025-06-27")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if ferr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", ferr.Status)
	}
}

func TestFetchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	_, err := c.Fetch(context.Background(), "tok", "NSE_EQ|X", "2025-06-27")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
