package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/dto"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/ledger"
	"github.com/guttosm/dappulse/internal/pnl"
	"github.com/guttosm/dappulse/internal/service"
	"github.com/guttosm/dappulse/internal/workbook"
)

type stubRefresher struct {
	store  *catalog.Store
	profit workbook.Grid
	runs   int
}

func (s *stubRefresher) Run(context.Context) models.RefreshStatus {
	s.runs++
	return s.store.Current().Status
}

func (s *stubRefresher) Store() *catalog.Store { return s.store }

func (s *stubRefresher) Profit() (workbook.Grid, bool) {
	return s.profit, s.profit != nil
}

type stubArchive struct {
	points []models.PricePoint
	err    error
	since  *time.Time
	limit  int
}

func (a *stubArchive) InsertSnapshot(context.Context, string, time.Time, []models.MarketRecord) error {
	return nil
}

func (a *stubArchive) GetPriceHistory(_ context.Context, _ string, since *time.Time, limit int) ([]models.PricePoint, error) {
	a.since, a.limit = since, limit
	return a.points, a.err
}

func (a *stubArchive) LatestSnapshotID(context.Context) (string, error) { return "", nil }

func (a *stubArchive) DeleteSnapshotsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type testEnv struct {
	store     *catalog.Store
	refresher *stubRefresher
	archive   *stubArchive
	portfolio service.PortfolioService
	router    *gin.Engine
}

func newTestEnv(t *testing.T, withArchive bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := catalog.NewStore(true)
	st.Apply(catalog.New([]models.MarketRecord{
		{Instrument: "CLZ5", Kind: models.KindOutright, Price: 70.5, TickValue: 100},
		{Instrument: "CLF6", Kind: models.KindOutright, Price: 70.1, TickValue: 100},
		{Instrument: "CLZ5-CLF6", Kind: models.KindSpread, Price: 0.4, TickValue: 100},
	}, catalog.LastWins), models.RefreshStatus{Message: "Success", Records: 3})

	env := &testEnv{
		store:     st,
		refresher: &stubRefresher{store: st, profit: workbook.FromStrings([][]string{{"Total", "1500"}})},
	}
	var market service.MarketService
	if withArchive {
		env.archive = &stubArchive{points: []models.PricePoint{{Instrument: "CLZ5", Price: 70.5}}}
		market = service.NewMarketService(env.refresher, env.archive)
	} else {
		market = service.NewMarketService(env.refresher, nil)
	}
	env.portfolio = service.NewPortfolioService(st, ledger.NewRegistry(time.Hour), pnl.NewEngine(pnl.LastLeg))
	env.router = NewRouter(NewHandler(market, env.portfolio), RouterConfig{})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestMarketEndpoints_TableDriven(t *testing.T) {
	cases := []struct {
		name    string
		archive bool
		method  string
		path    string
		status  int
		assert  func(t *testing.T, body []byte)
	}{
		{
			name:   "status",
			method: http.MethodGet,
			path:   "/api/v1/status",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var st models.RefreshStatus
				if err := json.Unmarshal(body, &st); err != nil || st.Message != "Success" || st.Records != 3 {
					t.Fatalf("unexpected status body %s (%v)", body, err)
				}
			},
		},
		{
			name:   "refresh",
			method: http.MethodPost,
			path:   "/api/v1/refresh",
			status: http.StatusOK,
		},
		{
			name:   "market all",
			method: http.MethodGet,
			path:   "/api/v1/market",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.MarketResponse
				if err := json.Unmarshal(body, &out); err != nil || out.Count != 3 || out.Records[0].Instrument != "CLZ5" {
					t.Fatalf("unexpected market body %s (%v)", body, err)
				}
			},
		},
		{
			name:   "market by type",
			method: http.MethodGet,
			path:   "/api/v1/market?type=spreads",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.MarketResponse
				if err := json.Unmarshal(body, &out); err != nil || out.Count != 1 || out.Records[0].Kind != models.KindSpread {
					t.Fatalf("unexpected market body %s (%v)", body, err)
				}
			},
		},
		{
			name:   "market bad type",
			method: http.MethodGet,
			path:   "/api/v1/market?type=option",
			status: http.StatusBadRequest,
		},
		{
			name:   "instrument found",
			method: http.MethodGet,
			path:   "/api/v1/market/CLF6",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var rec models.MarketRecord
				if err := json.Unmarshal(body, &rec); err != nil || rec.Price != 70.1 || rec.TickValue != 100 {
					t.Fatalf("unexpected record %s (%v)", body, err)
				}
			},
		},
		{
			name:   "instrument missing",
			method: http.MethodGet,
			path:   "/api/v1/market/NGZ5",
			status: http.StatusNotFound,
		},
		{
			name:   "instruments sorted",
			method: http.MethodGet,
			path:   "/api/v1/instruments?type=outright",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.InstrumentsResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Type != "Outright" || len(out.Instruments) != 2 || out.Instruments[0] != "CLF6" {
					t.Fatalf("unexpected instruments %+v", out)
				}
			},
		},
		{
			name:   "profit",
			method: http.MethodGet,
			path:   "/api/v1/profit",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.ProfitResponse
				if err := json.Unmarshal(body, &out); err != nil || out.Rows[0][1] != "1500" {
					t.Fatalf("unexpected profit %s (%v)", body, err)
				}
			},
		},
		{
			name:   "history archive disabled",
			method: http.MethodGet,
			path:   "/api/v1/history/CLZ5",
			status: http.StatusServiceUnavailable,
		},
		{
			name:    "history",
			archive: true,
			method:  http.MethodGet,
			path:    "/api/v1/history/CLZ5?since=2025-10-01&limit=10",
			status:  http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.HistoryResponse
				if err := json.Unmarshal(body, &out); err != nil || out.Instrument != "CLZ5" || len(out.Points) != 1 {
					t.Fatalf("unexpected history %s (%v)", body, err)
				}
			},
		},
		{
			name:    "history bad since",
			archive: true,
			method:  http.MethodGet,
			path:    "/api/v1/history/CLZ5?since=01/10/2025",
			status:  http.StatusBadRequest,
		},
		{
			name:    "history bad limit",
			archive: true,
			method:  http.MethodGet,
			path:    "/api/v1/history/CLZ5?limit=-3",
			status:  http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.archive)
			w := env.do(tc.method, tc.path, "")
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d; body=%s", w.Code, tc.status, w.Body.String())
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetHistory_LimitClampedAndDefaulted(t *testing.T) {
	env := newTestEnv(t, true)

	if w := env.do(http.MethodGet, "/api/v1/history/CLZ5", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.archive.limit != defaultHistoryLimit || env.archive.since != nil {
		t.Fatalf("defaults not applied: limit=%d since=%v", env.archive.limit, env.archive.since)
	}

	if w := env.do(http.MethodGet, "/api/v1/history/CLZ5?limit=999999&since=2025-10-01T12:00:00Z", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.archive.limit != maxHistoryLimit {
		t.Fatalf("limit = %d, want %d", env.archive.limit, maxHistoryLimit)
	}
	if env.archive.since == nil || env.archive.since.Hour() != 12 {
		t.Fatalf("since not parsed: %v", env.archive.since)
	}
}

func TestGetHistory_ArchiveError(t *testing.T) {
	env := newTestEnv(t, true)
	env.archive.err = errors.New("db down")

	w := env.do(http.MethodGet, "/api/v1/history/CLZ5", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var out dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.ErrorDetails != "db down" {
		t.Fatalf("unexpected error body %s", w.Body.String())
	}
}

func TestGetProfit_Unavailable(t *testing.T) {
	env := newTestEnv(t, false)
	env.refresher.profit = nil

	if w := env.do(http.MethodGet, "/api/v1/profit", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRefresh_DelegatesToPipeline(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(http.MethodPost, "/api/v1/refresh", "")
	env.do(http.MethodPost, "/api/v1/refresh", "")
	if env.refresher.runs != 2 {
		t.Fatalf("runs = %d, want 2", env.refresher.runs)
	}
}
