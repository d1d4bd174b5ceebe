package utility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"optionanalyzer/models"
)

const ltpBaseURL = "https://api.upstox.com/v2/market-quote/ltp"

// LTPClient wraps the market-quote LTP endpoint. Used to backfill the
// underlying spot price when a chain row does not carry one.
type LTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewLTPClient() *LTPClient {
	return &LTPClient{
		BaseURL: ltpBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetLtp returns the last traded price for an instrument key.
func (c *LTPClient) GetLtp(ctx context.Context, token, instrumentKey string) (float64, error) {
	reqURL := fmt.Sprintf("%s?instrument_key=%s", c.BaseURL, instrumentKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Add("Authorization", "Bearer "+token)
	req.Header.Add("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, err
	}
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ltp: status %d", res.StatusCode)
	}

	var ltpResp models.LtpResponse
	if err := json.Unmarshal(body, &ltpResp); err != nil {
		return 0, fmt.Errorf("ltp: decode: %w", err)
	}
	for _, value := range ltpResp.Data {
		return value.LastPrice, nil
	}
	return 0, fmt.Errorf("ltp: no data for %s", instrumentKey)
}

// FormatMetric renders one metric from a chain map, "N/A" when the provider
// did not send it. An absent metric is normal, never an error.
func FormatMetric(m map[string]float64, key string) string {
	v, ok := m[key]
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SortedKeys gives a stable render order for a metric map.
func SortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Moneyness classifies a contract relative to the underlying spot price.
// Returns "" when the spot is unknown.
func Moneyness(side string, strike, spot float64) string {
	if spot <= 0 {
		return ""
	}
	if spot == strike {
		return "ATM"
	}
	itm := spot > strike // CE
	if side == "PE" {
		itm = spot < strike
	}
	if itm {
		return "ITM"
	}
	return "OTM"
}
