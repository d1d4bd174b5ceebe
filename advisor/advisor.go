// Package advisor asks a hosted language model for a trading take on a
// fetched contract. Failures here never touch the snapshot being analyzed.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"optionanalyzer/models"
	"optionanalyzer/session"
	"optionanalyzer/utility"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel   = "llama3-8b-8192"
)

// ServiceError wraps a failed recommendation call.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("advisor: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("advisor: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client calls the Groq chat-completions endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		Model:   defaultModel,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Recommend renders the strategist prompt for the snapshot and returns the
// model's markdown answer as-is. The text is opaque: nothing downstream
// parses it.
func (c *Client) Recommend(ctx context.Context, snap session.ContractSnapshot) (string, error) {
	reqBody := models.ChatRequest{
		Model:       c.Model,
		Temperature: 0.5,
		Messages: []models.ChatMessage{
			{Role: "user", Content: BuildPrompt(snap)},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ServiceError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	req.Header.Add("Authorization", "Bearer "+c.APIKey)
	req.Header.Add("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return "", &ServiceError{Status: res.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	var chatResp models.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if chatResp.Error != nil {
		return "", &ServiceError{Err: errors.New(chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &ServiceError{Err: errors.New("empty choices in response")}
	}
	return chatResp.Choices[0].Message.Content, nil
}

// BuildPrompt renders the strategist prompt from a contract snapshot. The
// market data and greeks blocks are raw JSON so the model sees exactly what
// the provider sent, including gaps.
func BuildPrompt(snap session.ContractSnapshot) string {
	summary := map[string]any{
		"Underlying": snap.Selection.Underlying,
		"Expiry":     snap.Selection.Expiry,
		"Strike":     snap.Selection.Strike,
		"Type":       snap.Selection.Side,
	}
	if m := utility.Moneyness(snap.Selection.Side, snap.Selection.Strike, snap.SpotPrice); m != "" {
		summary["Moneyness"] = m
		summary["SpotPrice"] = snap.SpotPrice
	}
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")
	marketJSON, _ := json.MarshalIndent(orEmpty(snap.MarketData), "", "  ")
	greeksJSON, _ := json.MarshalIndent(orEmpty(snap.OptionGreeks), "", "  ")

	var b strings.Builder
	b.WriteString(`You are a senior options trading strategist at a hedge fund with deep experience in analyzing Indian stock options using market data and Greeks.

You are given the data of a selected option contract. Based on this, provide a detailed professional trading recommendation using the following format:

---
**RECOMMENDATION**: [BUY / SELL / HOLD]
**CONFIDENCE (0-100%)**: [e.g. 85%]

**REASONING**: Provide 10-20 short bullet points based on:
- Premium level
- Implied volatility
- Option Greeks (especially Delta, Theta, Vega, Gamma)
- Moneyness (ITM/ATM/OTM)
- Time decay
- Liquidity or spread
- Underlying strength or weakness
- Broader market conditions (if inferable)
- Support/resistance relative to strike
- Any skew/volatility clues
- Probabilities of profit or risk
- Volume or OI (if available)

**SUGGESTED STRATEGY**:
Recommend an appropriate strategy such as:
- Long/Short Call or Put
- Bull Call Spread, Bear Put Spread
- Iron Condor, Straddle, Strangle
- Calendar spread or ratio spread

Explain:
- Entry logic
- Max gain/loss
- Breakeven levels
- Ideal market movement or expiry outcome
- Risk level (Low/Moderate/High)

---
Be concise but professional. Avoid unnecessary disclaimers. Write in markdown.

### Contract Summary:
`)
	b.Write(summaryJSON)
	b.WriteString("\n\n### Market Data:\n")
	b.Write(marketJSON)
	b.WriteString("\n\n### Option Greeks:\n")
	b.Write(greeksJSON)
	return b.String()
}

func orEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
