package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/repo/memory"
)

// ---- test helpers ----

var checkedAt = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

func fixedRun(outcomes ...domain.Outcome) RunFunc {
	return func(context.Context) (*domain.Report, error) {
		return domain.Restore(checkedAt, outcomes), nil
	}
}

type recordingNotifier struct{ titles []string }

func (n *recordingNotifier) Send(_ context.Context, title, _ string) error {
	n.titles = append(n.titles, title)
	return nil
}

func setupServer(t *testing.T, run RunFunc) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(zap.NewNop(), memory.New(), run)
	// very high rate limits to avoid flakiness in tests
	srv.RunRPM, srv.RunBurst = 10_000, 10_000
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

type runBody struct {
	ID            int64            `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Tests         []domain.Outcome `json:"tests"`
	OverallStatus string           `json:"overall_status"`
	Issues        []string         `json:"issues_found"`
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	_, ts := setupServer(t, fixedRun())
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCreateRun_SavesAndNotifies(t *testing.T) {
	srv, ts := setupServer(t, fixedRun(
		domain.Pass("DNS Resolution", "ok"),
		domain.Fail("Port Connectivity", "Some ports are blocked: github.com:22 (SSH)"),
	))
	n := &recordingNotifier{}
	srv.Notifier = n

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/runs/1" {
		t.Fatalf("Location=%q", loc)
	}
	body := decode[runBody](t, resp)
	if body.ID != 1 || body.OverallStatus != "restricted" || len(body.Tests) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(body.Issues) != 1 || body.Issues[0] != "Port Connectivity" {
		t.Fatalf("issues=%v", body.Issues)
	}
	if len(n.titles) != 1 {
		t.Fatalf("restricted run should notify once, got %d", len(n.titles))
	}

	got, err := http.Get(ts.URL + "/api/runs/1")
	if err != nil {
		t.Fatal(err)
	}
	if got.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d", got.StatusCode)
	}
	if b := decode[runBody](t, got); !b.Timestamp.Equal(checkedAt) {
		t.Fatalf("timestamp=%v", b.Timestamp)
	}
}

func TestCreateRun_FaultsStillSaved(t *testing.T) {
	run := func(context.Context) (*domain.Report, error) {
		return domain.Restore(checkedAt, []domain.Outcome{domain.Fail("Packet Loss", "unexpected error: x")}), errors.New("x")
	}
	_, ts := setupServer(t, run)
	resp, err := http.Post(ts.URL+"/api/runs", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCreateRun_NoReportIs500(t *testing.T) {
	_, ts := setupServer(t, func(context.Context) (*domain.Report, error) { return nil, errors.New("boom") })
	resp, err := http.Post(ts.URL+"/api/runs", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCreateRun_OneAtATime(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Bool
	run := func(context.Context) (*domain.Report, error) {
		started.Store(true)
		<-release
		return domain.Restore(checkedAt, nil), nil
	}
	_, ts := setupServer(t, run)

	done := make(chan int)
	go func() {
		resp, err := http.Post(ts.URL+"/api/runs", "", nil)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	for !started.Load() {
		time.Sleep(time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/runs", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("concurrent run: want 409 got %d", resp.StatusCode)
	}
	close(release)
	if code := <-done; code != http.StatusCreated {
		t.Fatalf("first run: want 201 got %d", code)
	}
}

func TestCreateRun_ClientDisconnectDoesNotCancelRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	run := func(ctx context.Context) (*domain.Report, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			return domain.Restore(checkedAt, []domain.Outcome{domain.Fail("DNS Resolution", ctx.Err().Error())}), nil
		}
		return domain.Restore(checkedAt, []domain.Outcome{domain.Pass("DNS Resolution", "ok")}), nil
	}
	srv, ts := setupServer(t, run)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	if resp, err := client.Post(ts.URL+"/api/runs", "", nil); err == nil {
		resp.Body.Close()
		t.Fatalf("client should have timed out")
	}
	<-started
	// give the server time to see the dropped connection
	time.Sleep(100 * time.Millisecond)
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, err := srv.Store.Latest(context.Background())
		if err == nil {
			if rec.OverallStatus != domain.StatusClear {
				t.Fatalf("disconnect leaked into the run: %+v", rec.Report)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("run was not saved after client disconnect: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestListAndLatest(t *testing.T) {
	_, ts := setupServer(t, fixedRun(domain.Pass("a", "")))

	resp, err := http.Get(ts.URL + "/api/runs/latest")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest on empty store: want 404 got %d", resp.StatusCode)
	}

	for i := 0; i < 3; i++ {
		r, err := http.Post(ts.URL+"/api/runs", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		r.Body.Close()
	}

	list, err := http.Get(ts.URL + "/api/runs?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	runs := decode[[]runBody](t, list)
	if len(runs) != 2 || runs[0].ID != 3 || runs[1].ID != 2 {
		t.Fatalf("list=%+v", runs)
	}

	latest, err := http.Get(ts.URL + "/api/runs/latest")
	if err != nil {
		t.Fatal(err)
	}
	if b := decode[runBody](t, latest); b.ID != 3 || b.OverallStatus != "clear" {
		t.Fatalf("latest=%+v", b)
	}
}

func TestBadRequests(t *testing.T) {
	_, ts := setupServer(t, fixedRun())
	cases := []struct {
		path string
		want int
	}{
		{"/api/runs?limit=0", http.StatusBadRequest},
		{"/api/runs?limit=abc", http.StatusBadRequest},
		{"/api/runs/abc", http.StatusBadRequest},
		{"/api/runs/42", http.StatusNotFound},
	}
	for _, c := range cases {
		resp, err := http.Get(ts.URL + c.path)
		if err != nil {
			t.Fatal(err)
		}
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != c.want {
			t.Fatalf("%s: want %d got %d", c.path, c.want, resp.StatusCode)
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") || body["error"] == "" {
			t.Fatalf("%s: want JSON error body, got %v", c.path, body)
		}
	}
}

func TestCreateRun_RateLimited(t *testing.T) {
	srv := NewServer(zap.NewNop(), memory.New(), fixedRun())
	srv.RunRPM, srv.RunBurst = 1, 1
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/api/runs", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes=%v", codes)
	}

	// reads are not limited
	resp, err := http.Get(ts.URL + "/api/runs/latest")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest status=%d", resp.StatusCode)
	}
}
