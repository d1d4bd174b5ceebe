package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"optionanalyzer/models"
)

const targetExchange = "NSE"

// acceptedTypes are the instrument types kept from the master feed.
var acceptedTypes = map[string]bool{
	"OPTSTK": true,
	"OPTIDX": true,
	"EQ":     true,
	"CE":     true,
	"PE":     true,
}

// FetchError wraps a failed master download. Timeout reports whether the
// request deadline was the cause.
type FetchError struct {
	URL     string
	Status  int
	Timeout bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("catalog: fetch %s timed out: %v", e.URL, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("catalog: fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("catalog: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a failed decompression or structural parse of the master.
type ParseError struct {
	Stage string // "gzip" or "json"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog: parse (%s): %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader downloads the compressed NSE instrument master. The payload runs to
// several megabytes, so callers should go through Cache rather than loading
// per interaction.
type Loader struct {
	URL    string
	Client *http.Client
}

func NewLoader(url string) *Loader {
	return &Loader{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRaw downloads the gzipped master without decompressing it, so the raw
// bytes can be cached as-is.
func (l *Loader) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: l.URL, Err: err}
	}
	req.Header.Add("Accept", "application/json")

	res, err := l.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: l.URL, Timeout: isTimeout(err), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: l.URL, Status: res.StatusCode, Err: errors.New(res.Status)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &FetchError{URL: l.URL, Timeout: isTimeout(err), Err: err}
	}
	return body, nil
}

// Load fetches and parses a fresh snapshot.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	raw, err := l.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decompresses and normalizes raw master bytes into a snapshot.
// A single malformed record is dropped and counted, never fatal to the load.
func Parse(raw []byte) (*Catalog, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Stage: "gzip", Err: err}
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, &ParseError{Stage: "gzip", Err: err}
	}

	var p fastjson.Parser
	root, err := p.ParseBytes(plain)
	if err != nil {
		return nil, &ParseError{Stage: "json", Err: err}
	}
	arr, err := root.Array()
	if err != nil {
		return nil, &ParseError{Stage: "json", Err: err}
	}

	records := make([]models.InstrumentRecord, 0, len(arr))
	drops := make(map[string]int)
	for _, v := range arr {
		rec, reason := normalize(v)
		if reason == reasonFiltered {
			continue
		}
		if reason != "" {
			drops[reason]++
			continue
		}
		records = append(records, rec)
	}
	for reason, n := range drops {
		slog.Warn("catalog: dropped records", "reason", reason, "count", n)
	}
	return newCatalog(records, drops), nil
}

// reasonFiltered marks records excluded on purpose (wrong exchange or type),
// as opposed to malformed rows worth counting.
const reasonFiltered = "filtered"

// normalize turns one raw master object into an InstrumentRecord. The second
// return value is empty on success, reasonFiltered for out-of-scope rows, and
// a drop reason for malformed ones.
func normalize(v *fastjson.Value) (models.InstrumentRecord, string) {
	exchange := string(v.GetStringBytes("exchange"))
	if exchange != targetExchange {
		return models.InstrumentRecord{}, reasonFiltered
	}
	itype := string(v.GetStringBytes("instrument_type"))
	if !acceptedTypes[itype] {
		return models.InstrumentRecord{}, reasonFiltered
	}

	name := string(v.GetStringBytes("name"))
	symbol := string(v.GetStringBytes("trading_symbol"))
	if name == "" || symbol == "" {
		return models.InstrumentRecord{}, "missing_symbol"
	}
	key := string(v.GetStringBytes("instrument_key"))
	if key == "" {
		return models.InstrumentRecord{}, "missing_instrument_key"
	}

	// Some feeds carry the strike under "strike" instead of "strike_price".
	sv := v.Get("strike_price")
	if sv == nil {
		sv = v.Get("strike")
	}
	if sv == nil {
		return models.InstrumentRecord{}, "missing_strike"
	}
	strike, err := sv.Float64()
	if err != nil {
		return models.InstrumentRecord{}, "bad_strike"
	}

	ev := v.Get("expiry")
	if ev == nil {
		return models.InstrumentRecord{}, "missing_expiry"
	}
	epochMs, err := ev.Int64()
	if err != nil || epochMs <= 0 {
		return models.InstrumentRecord{}, "bad_expiry"
	}
	t := time.UnixMilli(epochMs).UTC()

	return models.InstrumentRecord{
		InstrumentKey:  key,
		AssetKey:       string(v.GetStringBytes("asset_key")),
		Symbol:         symbol,
		Name:           name,
		Expiry:         formatExpiry(t),
		ExpiryISO:      t.Format("2006-01-02"),
		StrikePrice:    strike,
		InstrumentType: itype,
		Exchange:       exchange,
	}, ""
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
