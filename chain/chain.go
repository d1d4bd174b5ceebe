// Package chain fetches the live option chain for an underlying and expiry
// and picks out the leg the user asked for.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"optionanalyzer/models"
)

const defaultBaseURL = "https://api.upstox.com/v2/option/chain"

// ErrNoLegMatch means no chain row carried both the requested strike and the
// resolved instrument key on the requested side.
var ErrNoLegMatch = errors.New("no chain leg matches strike and instrument key")

// FetchError wraps a failed chain request, transport or HTTP.
type FetchError struct {
	Status  int
	Timeout bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("chain: fetch timed out: %v", e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("chain: fetch: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("chain: fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client queries the Upstox option-chain endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch pulls the chain rows for one underlying and expiry. assetKey is the
// asset-level instrument key from the resolver, expiryDate is yyyy-mm-dd.
func (c *Client) Fetch(ctx context.Context, token, assetKey, expiryDate string) ([]models.OptionData, error) {
	params := url.Values{}
	params.Set("instrument_key", assetKey)
	params.Set("expiry_date", expiryDate)
	reqURL := fmt.Sprintf("%s?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Add("Authorization", "Bearer "+token)
	req.Header.Add("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Timeout: isTimeout(err), Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &FetchError{Timeout: isTimeout(err), Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &FetchError{Status: res.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	var chainResp models.OptionChainResp
	if err := json.Unmarshal(body, &chainResp); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("decode chain response: %w", err)}
	}
	return chainResp.Data, nil
}

// Leg is the matched side of a strike row plus row-level context.
type Leg struct {
	StrikePrice   float64
	SpotPrice     float64
	InstrumentKey string
	MarketData    map[string]float64
	OptionGreeks  map[string]float64
}

// MatchLeg finds the row whose strike equals the requested strike AND whose
// side-nested instrument key equals the resolved one. Both checks are needed:
// the CE and PE legs share a strike row, so strike alone picks the wrong
// contract half the time. Market data and greeks pass through verbatim; a
// missing map stays nil and renders as "N/A" downstream.
func MatchLeg(legs []models.OptionData, strike float64, side, instrumentKey string) (*Leg, error) {
	side = strings.ToUpper(strings.TrimSpace(side))
	if side != "CE" && side != "PE" {
		return nil, fmt.Errorf("chain: invalid option side %q: %w", side, ErrNoLegMatch)
	}
	for i := range legs {
		row := &legs[i]
		if row.StrikePrice != strike {
			continue
		}
		nested := &row.CallOptions
		if side == "PE" {
			nested = &row.PutOptions
		}
		if nested.InstrumentKey != instrumentKey {
			continue
		}
		return &Leg{
			StrikePrice:   row.StrikePrice,
			SpotPrice:     row.UnderlyingSpotPrice,
			InstrumentKey: nested.InstrumentKey,
			MarketData:    nested.MarketData,
			OptionGreeks:  nested.OptionGreeks,
		}, nil
	}
	return nil, fmt.Errorf("chain: strike %v side %s key %s: %w", strike, side, instrumentKey, ErrNoLegMatch)
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
