package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"

	"index-systemv1/internal/index"
	"index-systemv1/internal/metrics"
	"index-systemv1/internal/model"
	redisstore "index-systemv1/internal/store/redis"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the query-layer tunables, passed in at construction
// rather than read from ambient constants.
type RouterConfig struct {
	IndexSize    int // K, reported on /api/config
	FallbackDays int // bound of the point-in-time lookup
	LookbackDays int // default engine window, reported on /api/config
}

// Router serves the read-only query surface.
type Router struct {
	obs    model.ObservationReader
	idx    model.IndexReader
	hub    *Hub
	rdb    *goredis.Client
	guard  *TOTPGuard
	health *metrics.HealthStatus
	prom   *metrics.Metrics // optional
	cfg    RouterConfig
}

// NewRouter creates the gateway router.
func NewRouter(obs model.ObservationReader, idx model.IndexReader, hub *Hub, rdb *goredis.Client,
	guard *TOTPGuard, health *metrics.HealthStatus, prom *metrics.Metrics, cfg RouterConfig) *Router {
	if cfg.FallbackDays <= 0 {
		cfg.FallbackDays = index.DefaultFallbackDays
	}
	return &Router{obs: obs, idx: idx, hub: hub, rdb: rdb, guard: guard, health: health, prom: prom, cfg: cfg}
}

// Mux builds the HTTP routes.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", rt.hub.HandleWS)
	mux.HandleFunc("/api/index/history", rt.handleHistory)
	mux.HandleFunc("/api/index/at", rt.handleAt)
	mux.HandleFunc("/api/index/returns", rt.handleReturns)
	mux.HandleFunc("/api/index/changes", rt.handleChanges)
	mux.HandleFunc("/api/index/stats", rt.handleStats)
	mux.HandleFunc("/api/observations", rt.handleObservations)
	mux.HandleFunc("/api/config", rt.handleConfig)
	mux.HandleFunc("/healthz", rt.health.ServeHTTP)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/admin/recompute", rt.guard.Require(rt.handleRecompute))

	return mux
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+totpHeader)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleHistory serves GET /api/index/history?from=&to= — the stored index
// series, ascending by date.
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	series, err := rt.idx.IndexSeries(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		log.Printf("[api_gateway] index history query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}
	out := make([]RecordOut, 0, len(series))
	for _, rec := range series {
		out = append(out, recordOut(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAt serves GET /api/index/at?date= — point-in-time lookup with
// backward fallback. A miss is an explicit 404 carrying the last date tried,
// never a fabricated zero record.
func (rt *Router) handleAt(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date parameter is required")
		return
	}
	if _, err := model.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	rec, used, err := index.Lookup(rt.idx, date, rt.cfg.FallbackDays)
	if err != nil {
		var miss *index.LookupMissError
		if errors.As(err, &miss) {
			if rt.prom != nil {
				rt.prom.LookupMisses.Inc()
			}
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":      "no index record within fallback window",
				"requested":  miss.Requested,
				"last_tried": miss.LastTried,
			})
			return
		}
		log.Printf("[api_gateway] lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}

	if rt.prom != nil {
		reqT, _ := model.ParseDate(date)
		usedT, _ := model.ParseDate(used)
		rt.prom.LookupFallbackSteps.Observe(reqT.Sub(usedT).Hours() / 24)
	}
	writeJSON(w, http.StatusOK, LookupOut{Record: recordOut(*rec), DateUsed: used})
}

// handleReturns serves GET /api/index/returns?from=&to= — daily and
// cumulative return series derived on read. The cumulative baseline is the
// first record of the requested window.
func (rt *Router) handleReturns(w http.ResponseWriter, r *http.Request) {
	series, err := rt.idx.IndexSeries(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		log.Printf("[api_gateway] returns query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}

	daily := index.DailyReturns(series)
	cumulative := index.CumulativeReturns(series)
	out := make([]ReturnPoint, 0, len(series))
	for i, rec := range series {
		p := ReturnPoint{
			Date:             rec.Date,
			IndexValue:       rec.IndexValue,
			CumulativeReturn: cumulative[i],
		}
		if !math.IsNaN(daily[i]) {
			v := daily[i]
			p.DailyReturn = &v
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChanges serves GET /api/index/changes?from=&to= — composition
// change dates and per-change added/removed tickers.
func (rt *Router) handleChanges(w http.ResponseWriter, r *http.Request) {
	series, err := rt.idx.IndexSeries(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		log.Printf("[api_gateway] changes query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}

	out := ChangesOut{ChangeDates: []string{}, Changes: []ChangeOut{}}
	for _, c := range index.Changes(series) {
		out.ChangeDates = append(out.ChangeDates, c.Date)
		out.Changes = append(out.Changes, ChangeOut{Date: c.Date, Added: c.Added, Removed: c.Removed})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStats serves GET /api/index/stats — latest value and day-over-day
// movement. 404 when fewer than two records exist.
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	series, err := rt.idx.IndexSeries("", "")
	if err != nil {
		log.Printf("[api_gateway] stats query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}
	stats := index.ComputeStats(series)
	if stats == nil {
		writeError(w, http.StatusNotFound, "not enough index history")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleObservations serves GET /api/observations?ticker= — one ticker's
// full stored series.
func (rt *Router) handleObservations(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker parameter is required")
		return
	}
	obs, err := rt.obs.ObservationHistory(model.NormalizeTicker(ticker))
	if err != nil {
		log.Printf("[api_gateway] observations query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "store query failed")
		return
	}
	if obs == nil {
		obs = []model.Observation{}
	}
	writeJSON(w, http.StatusOK, obs)
}

// handleConfig serves GET /api/config.
func (rt *Router) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"index_size":    rt.cfg.IndexSize,
		"fallback_days": rt.cfg.FallbackDays,
		"lookback_days": rt.cfg.LookbackDays,
	})
}

// handleRecompute serves POST /api/admin/recompute — publishes a recompute
// command to the engine over Redis. The gateway itself never writes to the
// store.
func (rt *Router) handleRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for _, d := range []string{req.From, req.To} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		}
	}

	payload := req.From + "," + req.To
	if err := rt.rdb.Publish(r.Context(), redisstore.ChannelRecompute, payload).Err(); err != nil {
		log.Printf("[api_gateway] recompute publish failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "engine command channel unavailable")
		return
	}
	log.Printf("[api_gateway] recompute command published: %q", payload)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func recordOut(rec model.IndexRecord) RecordOut {
	comp := rec.Composition
	if comp == nil {
		comp = []string{}
	}
	return RecordOut{Date: rec.Date, IndexValue: rec.IndexValue, Composition: comp}
}
