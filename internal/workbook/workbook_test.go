package workbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/xuri/excelize/v2"
)

func TestGrid_CellAndClip(t *testing.T) {
	g := Grid{
		{"a", 1.0, nil},
		{"b"},
		{nil, "x", true, "overflow"},
	}

	if g.Cell(0, 1) != 1.0 || g.Cell(1, 2) != nil || g.Cell(-1, 0) != nil || g.Cell(9, 9) != nil {
		t.Fatalf("unexpected Cell results")
	}
	if g.Width() != 4 {
		t.Fatalf("width = %d, want 4", g.Width())
	}
	if got := g.Row(1); !reflect.DeepEqual(got, []string{"b", "", "", ""}) {
		t.Fatalf("Row(1) = %q", got)
	}

	clipped := g.Clip(Region{Rows: 2, Cols: 2})
	if len(clipped) != 2 || len(clipped[0]) != 2 || len(clipped[1]) != 1 {
		t.Fatalf("unexpected clip %v", clipped)
	}
	if len(g[0]) != 3 {
		t.Fatalf("clip mutated the source grid")
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  CLZ5 ", "CLZ5"},
		{5.0, "5"},
		{70.25, "70.25"},
		{42, "42"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := CellString(tt.in); got != tt.want {
			t.Fatalf("CellString(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromStrings_BlankToNil(t *testing.T) {
	g := FromStrings([][]string{{"a", " ", ""}, {}})
	if g[0][0] != "a" || g[0][1] != nil || g[0][2] != nil || len(g[1]) != 0 {
		t.Fatalf("unexpected grid %#v", g)
	}
	if s := g.Strings(); s[0][0] != "a" || s[0][1] != "" {
		t.Fatalf("unexpected strings %q", s)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileFetcher_CSV(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "book.csv")
	writeFile(t, main, "Outrights,Last\nCLZ5,70.5\nCLF6,70.1\n")
	writeFile(t, filepath.Join(dir, "book_Profit.csv"), "Total,1500\n")

	f := NewFileFetcher(main)
	f.PrimarySheet = "DAP_Main"

	g, err := f.Fetch(context.Background(), "DAP_Main", MainRegion)
	if err != nil {
		t.Fatalf("fetch main: %v", err)
	}
	if len(g) != 3 || CellString(g.Cell(1, 1)) != "70.5" {
		t.Fatalf("unexpected main grid %v", g)
	}

	p, err := f.Fetch(context.Background(), "Profit", ProfitRegion)
	if err != nil || CellString(p.Cell(0, 1)) != "1500" {
		t.Fatalf("profit = %v, %v", p, err)
	}

	if _, err := f.Fetch(context.Background(), "Other", MainRegion); !errors.Is(err, ErrFetchUnavailable) {
		t.Fatalf("expected ErrFetchUnavailable for unknown sheet, got %v", err)
	}

	clipped, err := f.Fetch(context.Background(), "DAP_Main", Region{Rows: 2, Cols: 1})
	if err != nil || len(clipped) != 2 || len(clipped[0]) != 1 {
		t.Fatalf("region not applied: %v, %v", clipped, err)
	}
}

func TestFileFetcher_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", "DAP_Main"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	_ = book.SetCellValue("DAP_Main", "B4", "Outrights")
	_ = book.SetCellValue("DAP_Main", "B5", "CLZ5")
	_ = book.SetCellValue("DAP_Main", "D5", 70.5)
	_ = book.SetCellValue("DAP_Main", "B6", "CLF6")
	_ = book.SetCellValue("DAP_Main", "D6", 1234.5)
	thousands, err := book.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if err := book.SetCellStyle("DAP_Main", "D6", "D6", thousands); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = book.Close()

	g, err := NewFileFetcher(path).Fetch(context.Background(), "DAP_Main", MainRegion)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if CellString(g.Cell(3, 1)) != "Outrights" || CellString(g.Cell(4, 1)) != "CLZ5" || CellString(g.Cell(4, 3)) != "70.5" {
		t.Fatalf("unexpected grid %v", g.Strings())
	}
	// Number formats must not leak into cell text ("1,234.50" would coerce to 0).
	if got := CellString(g.Cell(5, 3)); got != "1234.5" {
		t.Fatalf("formatted cell read as %q, want raw 1234.5", got)
	}

	if _, err := NewFileFetcher(path).Fetch(context.Background(), "Profit", ProfitRegion); !errors.Is(err, ErrFetchUnavailable) {
		t.Fatalf("expected ErrFetchUnavailable for missing sheet, got %v", err)
	}
}

func TestFileFetcher_Unavailable(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "book.txt")
	writeFile(t, txt, "x")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		path string
		ctx  context.Context
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.xlsx"), ctx: context.Background()},
		{name: "unsupported extension", path: txt, ctx: context.Background()},
		{name: "corrupt xlsx", path: func() string { p := filepath.Join(dir, "bad.xlsx"); writeFile(t, p, "not a zip"); return p }(), ctx: context.Background()},
		{name: "cancelled context", path: txt, ctx: cancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileFetcher(tt.path).Fetch(tt.ctx, "DAP_Main", MainRegion)
			if !errors.Is(err, ErrFetchUnavailable) {
				t.Fatalf("expected ErrFetchUnavailable, got %v", err)
			}
		})
	}
}

type stubFetcher struct {
	calls int32
	block bool
	err   error
}

func (s *stubFetcher) Describe() string { return "stub" }

func (s *stubFetcher) Fetch(ctx context.Context, _ string, _ Region) (Grid, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return Grid{{"ok"}}, nil
}

func TestSource_TimeoutIsUnavailable(t *testing.T) {
	src := NewSource(&stubFetcher{block: true}, 20*time.Millisecond, DefaultBreakerSettings)

	start := time.Now()
	_, err := src.Fetch(context.Background(), "DAP_Main", MainRegion)
	if !errors.Is(err, ErrFetchUnavailable) {
		t.Fatalf("expected ErrFetchUnavailable, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("fetch was not bounded")
	}
}

func TestSource_WrapsPlainErrors(t *testing.T) {
	src := NewSource(&stubFetcher{err: errors.New("disk on fire")}, 0, DefaultBreakerSettings)
	if _, err := src.Fetch(context.Background(), "DAP_Main", MainRegion); !errors.Is(err, ErrFetchUnavailable) {
		t.Fatalf("expected ErrFetchUnavailable, got %v", err)
	}
	if src.Describe() != "stub" {
		t.Fatalf("describe = %q", src.Describe())
	}
}

func TestSource_BreakerOpens(t *testing.T) {
	f := &stubFetcher{err: ErrFetchUnavailable}
	src := NewSource(f, 0, BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	})

	for i := 0; i < 2; i++ {
		_, _ = src.Fetch(context.Background(), "DAP_Main", MainRegion)
	}
	if src.State() != gobreaker.StateOpen.String() {
		t.Fatalf("state = %s, want open", src.State())
	}

	_, err := src.Fetch(context.Background(), "DAP_Main", MainRegion)
	if !errors.Is(err, ErrFetchUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-state unavailable error, got %v", err)
	}
	if calls := atomic.LoadInt32(&f.calls); calls != 2 {
		t.Fatalf("open breaker still reached the fetcher: %d calls", calls)
	}
}

func TestSource_Success(t *testing.T) {
	src := NewSource(&stubFetcher{}, time.Second, DefaultBreakerSettings)
	g, err := src.Fetch(context.Background(), "DAP_Main", MainRegion)
	if err != nil || CellString(g.Cell(0, 0)) != "ok" {
		t.Fatalf("fetch = %v, %v", g, err)
	}
}
