package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/models"
)

func dialStream(t *testing.T, srv *httptest.Server, sid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + sid + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	return conn
}

func readReport(t *testing.T, conn *websocket.Conn) models.PnLReport {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var report models.PnLReport
	if err := conn.ReadJSON(&report); err != nil {
		t.Fatalf("read: %v", err)
	}
	return report
}

func TestStreamPnL_PushesOnCatalogSwap(t *testing.T) {
	env := newTestEnv(t, false)
	sid := createSession(t, env)
	env.do(http.MethodPost, "/api/v1/sessions/"+sid+"/positions", `{"instrument":"CLZ5","lots":10,"entry_price":69}`)

	srv := httptest.NewServer(env.router)
	defer srv.Close()
	conn := dialStream(t, srv, sid)
	defer conn.Close()

	first := readReport(t, conn)
	if len(first.Rows) != 1 || first.TotalPnL < 1500-1e-6 || first.TotalPnL > 1500+1e-6 {
		t.Fatalf("unexpected initial report %+v", first)
	}

	env.store.Apply(catalog.New([]models.MarketRecord{
		{Instrument: "CLZ5", Kind: models.KindOutright, Price: 71, TickValue: 100},
	}, catalog.LastWins), models.RefreshStatus{Message: "Success"})

	next := readReport(t, conn)
	if next.TotalPnL < 2000-1e-6 || next.TotalPnL > 2000+1e-6 {
		t.Fatalf("total after swap = %v, want 2000", next.TotalPnL)
	}
}

func TestStreamPnL_UnknownSession(t *testing.T) {
	env := newTestEnv(t, false)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/nope/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func TestStreamPnL_ClosesWhenSessionDeleted(t *testing.T) {
	env := newTestEnv(t, false)
	sid := createSession(t, env)

	srv := httptest.NewServer(env.router)
	defer srv.Close()
	conn := dialStream(t, srv, sid)
	defer conn.Close()
	readReport(t, conn)

	if err := env.portfolio.DeleteSession(sid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	env.store.Apply(catalog.Empty(), models.RefreshStatus{ErrorKind: "fetch_unavailable"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
