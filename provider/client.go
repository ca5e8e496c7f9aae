package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"hublocator/config"
	"hublocator/hublerr"
)

// Client wraps the third-party transport-data HTTP API described in
// spec.md §4.1 and §6, adapted from the shape of the teacher's
// routing/transit.go Google Maps client (a bare http.Client, url.Values
// query building, json.Unmarshal into typed response structs) but
// retargeted to the four TfL-like endpoints and enriched with the rate
// limiting, retry, caching and dedup this module's spec calls for.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	cache *Cache
	group singleflight.Group

	limiters map[string]*RateLimiter
	timeouts map[string]time.Duration
	retry    config.RetryConfig
}

const (
	familySequence  = "sequence"
	familyStopsNear = "stops_near"
	familyTimetable = "timetable"
	familyJourney   = "journey"
)

// NewClient builds a Provider client against cfg, with one rate
// limiter per endpoint family sized from cfg.Concurrency (spec.md §5:
// "4-16 workers for sequence and journey calls; 1-4 for timetables" —
// the concurrency limit doubles as the per-second rate here, since the
// corpus has no separate rate-limit-vs-concurrency knob).
func NewClient(cfg config.Config, token string, cache *Cache) *Client {
	return &Client{
		baseURL: cfg.ProviderBaseURL,
		token:   token,
		http:    &http.Client{},
		cache:   cache,
		limiters: map[string]*RateLimiter{
			familySequence:  NewRateLimiter(cfg.Concurrency.Sequence),
			familyStopsNear: NewRateLimiter(cfg.Concurrency.StopsNear),
			familyTimetable: NewRateLimiter(cfg.Concurrency.Timetable),
			familyJourney:   NewRateLimiter(cfg.Concurrency.Journey),
		},
		timeouts: map[string]time.Duration{
			familySequence:  time.Duration(cfg.Timeouts.SequenceSeconds) * time.Second,
			familyStopsNear: time.Duration(cfg.Timeouts.SequenceSeconds) * time.Second,
			familyTimetable: time.Duration(cfg.Timeouts.TimetableSeconds) * time.Second,
			familyJourney:   time.Duration(cfg.Timeouts.JourneySeconds) * time.Second,
		},
		retry: cfg.Retry,
	}
}

// Close stops every background rate-limiter goroutine.
func (c *Client) Close() {
	for _, rl := range c.limiters {
		rl.Close()
	}
}

// requestID returns a deterministic 12-character request ID for
// logging, per spec.md §4.1: the first 12 hex characters of
// sha256(method+url). Requests carry no body, so none is hashed.
func requestID(method, rawURL string) string {
	sum := sha256.Sum256([]byte(method + rawURL))
	return hex.EncodeToString(sum[:])[:12]
}

// doGET performs a rate-limited, retried GET against rawURL, returning
// the raw response body. cacheable requests are also deduplicated via
// singleflight so concurrent identical calls only hit the network
// once, grounded on jinterlante1206-AleutianLocal's crs_adapter.go use
// of singleflight.Group for exactly this cache-stampede purpose.
func (c *Client) doGET(ctx context.Context, family, op, rawURL string, useCache bool) ([]byte, error) {
	if useCache && c.cache != nil {
		if data, ok := c.cache.Get(Key(rawURL)); ok {
			return data, nil
		}
	}

	fetch := func() (interface{}, error) {
		var body []byte
		err := withRetry(ctx, c.retry, op, func() error {
			b, ferr := c.fetchOnce(ctx, family, op, rawURL)
			if ferr != nil {
				return ferr
			}
			body = b
			return nil
		})
		if err != nil {
			return nil, err
		}
		if useCache && c.cache != nil {
			if perr := c.cache.Put(Key(rawURL), body); perr != nil {
				log.Printf("provider: cache write failed for %s: %v", rawURL, perr)
			}
		}
		return body, nil
	}

	v, err, _ := c.group.Do(rawURL, fetch)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) fetchOnce(ctx context.Context, family, op, rawURL string) ([]byte, error) {
	limiter := c.limiters[family]
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, hublerr.New(hublerr.Cancelled, op, err)
		}
	}

	timeout := c.timeouts[family]
	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, hublerr.New(hublerr.Malformed, op, err)
	}
	if c.token != "" {
		req.Header.Set("app_key", c.token)
	}

	id := requestID(http.MethodGet, rawURL)
	log.Printf("provider[%s]: request %s %s", id, op, rawURL)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("provider[%s]: transport error: %v", id, err)
		return nil, hublerr.New(hublerr.Transport, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, hublerr.New(hublerr.Transport, op, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, hublerr.New(hublerr.Auth, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, hublerr.New(hublerr.RateLimited, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, hublerr.New(hublerr.NotFound, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, hublerr.New(hublerr.Transport, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, hublerr.New(hublerr.Malformed, op, fmt.Errorf("status %d", resp.StatusCode))
	}

	log.Printf("provider[%s]: response %d, %d bytes", id, resp.StatusCode, len(body))
	return body, nil
}

// LineRouteSequence implements spec.md §4.1's line_route_sequence.
func (c *Client) LineRouteSequence(ctx context.Context, lineID, direction string) (SequenceResponse, error) {
	rawURL := fmt.Sprintf("%s/line/%s/route/sequence/%s", c.baseURL, url.PathEscape(lineID), url.PathEscape(direction))
	body, err := c.doGET(ctx, familySequence, "provider.lineRouteSequence", rawURL, true)
	if err != nil {
		return SequenceResponse{}, err
	}
	var out SequenceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return SequenceResponse{}, hublerr.New(hublerr.Malformed, "provider.lineRouteSequence", err)
	}
	return out, nil
}

// StopsNear implements spec.md §4.1's stops_near. The caller is
// responsible for filtering results that fall outside radiusM — the
// provider "may return entries outside radius".
func (c *Client) StopsNear(ctx context.Context, lat, lon, radiusM float64) ([]StopPoint, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("radius", strconv.FormatFloat(radiusM, 'f', 0, 64))
	q.Set("stopTypes", "NaptanMetroStation,NaptanRailStation")
	rawURL := fmt.Sprintf("%s/stoppoint?%s", c.baseURL, q.Encode())

	body, err := c.doGET(ctx, familyStopsNear, "provider.stopsNear", rawURL, false)
	if err != nil {
		return nil, err
	}
	var out []StopPoint
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, hublerr.New(hublerr.Malformed, "provider.stopsNear", err)
	}
	return out, nil
}

// Timetable implements spec.md §4.1's timetable.
func (c *Client) Timetable(ctx context.Context, lineID, fromStationID string) (TimetableResponse, error) {
	rawURL := fmt.Sprintf("%s/line/%s/timetable/%s", c.baseURL, url.PathEscape(lineID), url.PathEscape(fromStationID))
	body, err := c.doGET(ctx, familyTimetable, "provider.timetable", rawURL, true)
	if err != nil {
		return TimetableResponse{}, err
	}
	var out TimetableResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return TimetableResponse{}, hublerr.New(hublerr.Malformed, "provider.timetable", err)
	}
	return out, nil
}

// Journey implements spec.md §4.1's journey, returning minutes or
// NoJourney. modeHint may be empty to omit the mode filter. Same-station
// requests short-circuit to 0 without a round-trip, per
// original_source/api_interaction/tfl_api.py get_travel_time.
func (c *Client) Journey(ctx context.Context, fromID, toID, modeHint string) (int, error) {
	if fromID == toID {
		return 0, nil
	}

	q := url.Values{}
	if modeHint != "" {
		q.Set("mode", modeHint)
	}
	rawURL := fmt.Sprintf("%s/journey/journeyresults/%s/to/%s", c.baseURL, url.PathEscape(fromID), url.PathEscape(toID))
	if enc := q.Encode(); enc != "" {
		rawURL += "?" + enc
	}

	body, err := c.doGET(ctx, familyJourney, "provider.journey", rawURL, false)
	if err != nil {
		return 0, err
	}
	var out JourneyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, hublerr.New(hublerr.Malformed, "provider.journey", err)
	}
	if len(out.Journeys) == 0 {
		return NoJourney, nil
	}
	return out.Journeys[0].Duration, nil
}
