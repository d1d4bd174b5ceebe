// Package controllers exposes the three interaction screens over HTTP:
// select a contract, analyze its live data, request a recommendation.
package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"optionanalyzer/advisor"
	"optionanalyzer/catalog"
	"optionanalyzer/chain"
	"optionanalyzer/config"
	"optionanalyzer/metrics"
	"optionanalyzer/session"
	"optionanalyzer/utility"
)

// Screens wires the user-facing screens to the resolution pipeline. One
// Screens value serves one interactive session.
type Screens struct {
	Config  *config.Config
	Redis   *config.RedisClient
	Catalog *catalog.Cache
	Chain   *chain.Client
	LTP     *utility.LTPClient
	Advisor *advisor.Client
	Session *session.Session
}

// GET /screen/select
// Progressive enumerations for the first screen: with no params the distinct
// underlyings, with ?underlying= its expiries, with ?underlying=&expiry= the
// strikes.
func (s *Screens) SelectOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use GET"))
		return
	}
	cat, err := s.Catalog.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	underlying := r.URL.Query().Get("underlying")
	expiry := r.URL.Query().Get("expiry")
	switch {
	case underlying == "":
		writeJSON(w, http.StatusOK, map[string]any{"underlyings": cat.Underlyings()})
	case expiry == "":
		writeJSON(w, http.StatusOK, map[string]any{"expiries": cat.Expiries(underlying)})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"strikes": cat.Strikes(underlying, expiry)})
	}
}

type confirmRequest struct {
	Underlying string  `json:"underlying"`
	Expiry     string  `json:"expiry"`
	Strike     float64 `json:"strike"`
	Side       string  `json:"side"`
}

// POST /screen/confirm
// Validates that the selection resolves to exactly one contract, then stores
// it in the session. Any snapshot from a previous selection is dropped.
func (s *Screens) ConfirmSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cat, err := s.Catalog.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	res, err := cat.Resolve(req.Underlying, req.Expiry, req.Strike, req.Side)
	if err != nil {
		if errors.Is(err, catalog.ErrNoMatch) {
			metrics.ResolveFailures.Inc()
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.Session.Confirm(session.Selection{
		Underlying: req.Underlying,
		Expiry:     res.Record.Expiry,
		ExpiryISO:  res.ExpiryISO,
		Strike:     req.Strike,
		Side:       res.Record.InstrumentType,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "confirmed",
		"instrument_key": res.InstrumentKey,
		"expiry_iso":     res.ExpiryISO,
	})
}

type analyzeResponse struct {
	Summary       map[string]any     `json:"summary"`
	Premium       string             `json:"premium"`
	Moneyness     string             `json:"moneyness,omitempty"`
	SpotPrice     float64            `json:"spot_price,omitempty"`
	InstrumentKey string             `json:"instrument_key"`
	MarketData    map[string]float64 `json:"market_data"`
	OptionGreeks  map[string]float64 `json:"option_greeks"`
}

// GET /screen/analyze
// Resolves the confirmed selection against the catalog, fetches the live
// chain, matches the leg, and stores the snapshot for the advisor step.
func (s *Screens) AnalyzeContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use GET"))
		return
	}
	sel, ok := s.Session.Selection()
	if !ok {
		writeError(w, http.StatusConflict, errors.New("no selection confirmed, go through the select screen first"))
		return
	}

	token, err := s.Config.BearerToken(s.Redis)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	cat, err := s.Catalog.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	res, err := cat.Resolve(sel.Underlying, sel.Expiry, sel.Strike, sel.Side)
	if err != nil {
		metrics.ResolveFailures.Inc()
		writeError(w, http.StatusNotFound, err)
		return
	}

	metrics.ChainFetches.Inc()
	legs, err := s.Chain.Fetch(r.Context(), token, res.AssetKey, sel.ExpiryISO)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	leg, err := chain.MatchLeg(legs, sel.Strike, sel.Side, res.InstrumentKey)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	spot := leg.SpotPrice
	if spot == 0 && res.AssetKey != "" {
		// Some chain rows omit the spot; best effort, the screen works without it.
		if ltp, lerr := s.LTP.GetLtp(r.Context(), token, res.AssetKey); lerr == nil {
			spot = ltp
		}
	}

	snap := session.ContractSnapshot{
		Selection:     sel,
		InstrumentKey: res.InstrumentKey,
		AssetKey:      res.AssetKey,
		SpotPrice:     spot,
		MarketData:    leg.MarketData,
		OptionGreeks:  leg.OptionGreeks,
		FetchedAt:     time.Now().UTC(),
	}
	if err := s.Session.AttachSnapshot(snap); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Summary: map[string]any{
			"underlying": sel.Underlying,
			"expiry":     sel.Expiry,
			"strike":     sel.Strike,
			"type":       sel.Side,
		},
		Premium:       utility.FormatMetric(leg.MarketData, "ltp"),
		Moneyness:     utility.Moneyness(sel.Side, sel.Strike, spot),
		SpotPrice:     spot,
		InstrumentKey: res.InstrumentKey,
		MarketData:    leg.MarketData,
		OptionGreeks:  leg.OptionGreeks,
	})
}

// POST /screen/advise
// Runs the advisor on the stored snapshot. A failure is reported and leaves
// the snapshot in place so the user can just retry.
func (s *Screens) Advise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}
	snap, ok := s.Session.Snapshot()
	if !ok {
		writeError(w, http.StatusConflict, errors.New("no contract analyzed yet, go through the analyze screen first"))
		return
	}

	text, err := s.Advisor.Recommend(r.Context(), snap)
	if err != nil {
		metrics.AdvisorCalls.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadGateway, err)
		return
	}
	metrics.AdvisorCalls.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"recommendation": text})
}

// POST /session/reset
// Clears the selection and snapshot so a new contract can be analyzed.
func (s *Screens) ResetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}
	s.Session.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// POST /catalog/refresh
// Drops the cached instrument master so the next screen load downloads a
// fresh snapshot.
func (s *Screens) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}
	s.Catalog.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("screen error", "status", status, "err", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
