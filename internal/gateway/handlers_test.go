package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"index-systemv1/internal/metrics"
	"index-systemv1/internal/model"
)

// fakeReader serves canned observations and index records.
type fakeReader struct {
	series map[string]model.IndexRecord // date -> record
	order  []string                     // ascending dates
	hist   map[string][]model.Observation
}

func (f *fakeReader) ObservationsOnDate(date string) ([]model.Observation, error) { return nil, nil }

func (f *fakeReader) ObservationHistory(ticker string) ([]model.Observation, error) {
	return f.hist[ticker], nil
}

func (f *fakeReader) ObservationDates(from, to string) ([]string, error) { return nil, nil }

func (f *fakeReader) IndexRecordAt(date string) (*model.IndexRecord, error) {
	if rec, ok := f.series[date]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeReader) IndexSeries(from, to string) ([]model.IndexRecord, error) {
	var out []model.IndexRecord
	for _, d := range f.order {
		if (from == "" || d >= from) && (to == "" || d <= to) {
			out = append(out, f.series[d])
		}
	}
	return out, nil
}

func newTestRouter(reader *fakeReader) *Router {
	return NewRouter(reader, reader, nil, nil, &TOTPGuard{}, metrics.NewHealthStatus(), nil,
		RouterConfig{IndexSize: 2, FallbackDays: 5, LookbackDays: 30})
}

func seededReader() *fakeReader {
	return &fakeReader{
		series: map[string]model.IndexRecord{
			"2025-03-03": {Date: "2025-03-03", IndexValue: 100, Composition: []string{"AAPL", "MSFT"}},
			"2025-03-04": {Date: "2025-03-04", IndexValue: 110, Composition: []string{"AAPL", "NVDA"}},
		},
		order: []string{"2025-03-03", "2025-03-04"},
		hist: map[string][]model.Observation{
			"AAPL": {{Ticker: "AAPL", Date: "2025-03-03", SharePrice: 100, MarketCap: 1000, EffectiveShares: 10}},
		},
	}
}

func get(t *testing.T, rt *Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	rt.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleHistory(t *testing.T) {
	rt := newTestRouter(seededReader())
	rec := get(t, rt, "/api/index/history")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []RecordOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(out) != 2 || out[0].Date != "2025-03-03" || out[1].IndexValue != 110 {
		t.Errorf("history = %+v", out)
	}
}

func TestHandleAt_Fallback(t *testing.T) {
	rt := newTestRouter(seededReader())

	// No record for the 6th or 5th; the lookup walks back to the 4th.
	rec := get(t, rt, "/api/index/at?date=2025-03-06")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out LookupOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if out.DateUsed != "2025-03-04" {
		t.Errorf("date_used = %s, want 2025-03-04", out.DateUsed)
	}
	if out.Record.IndexValue != 110 {
		t.Errorf("value = %v, want 110", out.Record.IndexValue)
	}
}

func TestHandleAt_Miss(t *testing.T) {
	rt := newTestRouter(seededReader())

	rec := get(t, rt, "/api/index/at?date=2025-06-01")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var out map[string]string
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out["requested"] != "2025-06-01" || out["last_tried"] != "2025-05-27" {
		t.Errorf("miss payload = %v", out)
	}
}

func TestHandleAt_BadDate(t *testing.T) {
	rt := newTestRouter(seededReader())

	if rec := get(t, rt, "/api/index/at"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: status = %d, want 400", rec.Code)
	}
	if rec := get(t, rt, "/api/index/at?date=03/06/2025"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed date: status = %d, want 400", rec.Code)
	}
}

func TestHandleReturns_FirstDailyIsNull(t *testing.T) {
	rt := newTestRouter(seededReader())
	rec := get(t, rt, "/api/index/returns")

	var out []ReturnPoint
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 points, got %d", len(out))
	}
	if out[0].DailyReturn != nil {
		t.Errorf("first daily return = %v, want null", *out[0].DailyReturn)
	}
	if out[1].DailyReturn == nil || *out[1].DailyReturn != 10 {
		t.Errorf("second daily return = %v, want 10", out[1].DailyReturn)
	}
	if out[1].CumulativeReturn != 10 {
		t.Errorf("cumulative = %v, want 10", out[1].CumulativeReturn)
	}
}

func TestHandleChanges(t *testing.T) {
	rt := newTestRouter(seededReader())
	rec := get(t, rt, "/api/index/changes")

	var out ChangesOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(out.ChangeDates) != 1 || out.ChangeDates[0] != "2025-03-04" {
		t.Errorf("change dates = %v", out.ChangeDates)
	}
	if len(out.Changes) != 1 || out.Changes[0].Added[0] != "NVDA" || out.Changes[0].Removed[0] != "MSFT" {
		t.Errorf("changes = %+v", out.Changes)
	}
}

func TestHandleStats_TooShort(t *testing.T) {
	reader := &fakeReader{
		series: map[string]model.IndexRecord{"2025-03-03": {Date: "2025-03-03", IndexValue: 100}},
		order:  []string{"2025-03-03"},
	}
	rt := newTestRouter(reader)

	if rec := get(t, rt, "/api/index/stats"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleObservations(t *testing.T) {
	rt := newTestRouter(seededReader())

	if rec := get(t, rt, "/api/observations"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing ticker: status = %d, want 400", rec.Code)
	}

	// Lowercase input is normalized before the store query.
	rec := get(t, rt, "/api/observations?ticker=aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []model.Observation
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(out) != 1 || out[0].Ticker != "AAPL" {
		t.Errorf("observations = %+v", out)
	}
}

func TestHandleConfig(t *testing.T) {
	rt := newTestRouter(seededReader())
	rec := get(t, rt, "/api/config")

	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if out["index_size"].(float64) != 2 || out["fallback_days"].(float64) != 5 {
		t.Errorf("config = %v", out)
	}
}

func TestRecompute_DisabledWithoutSecret(t *testing.T) {
	rt := newTestRouter(seededReader())

	rec := httptest.NewRecorder()
	rt.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
