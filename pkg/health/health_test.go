package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("a", func(context.Context) Result { return Result{Status: StatusUp} })
	c.Register("b", func(context.Context) Result { return Result{Status: StatusDegraded, Message: "slow"} })

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("Status = %q, want %q", report.Status, StatusDegraded)
	}
	if len(report.Components) != 2 {
		t.Fatalf("Components = %d, want 2", len(report.Components))
	}

	c.Register("c", func(context.Context) Result { return Result{Status: StatusDown, Message: "dead"} })
	report = c.Run(context.Background())
	if report.Status != StatusDown {
		t.Fatalf("Status = %q, want %q", report.Status, StatusDown)
	}
}

func TestRunWithNoChecksIsUp(t *testing.T) {
	report := NewChecker().Run(context.Background())
	if report.Status != StatusUp {
		t.Fatalf("Status = %q, want %q", report.Status, StatusUp)
	}
}

func TestReadyHandlerReports503WhenDown(t *testing.T) {
	c := NewChecker()
	c.Register("snapshot", func(context.Context) Result {
		return Result{Status: StatusDown, Message: "no snapshot loaded"}
	})

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Components["snapshot"].Message != "no snapshot loaded" {
		t.Fatalf("unexpected component result: %+v", report.Components["snapshot"])
	}
}

func TestLiveHandlerAlwaysOK(t *testing.T) {
	c := NewChecker()
	c.Register("snapshot", func(context.Context) Result { return Result{Status: StatusDown} })

	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
