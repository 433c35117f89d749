package server_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/plan"
	"github.com/kbukum/transducekit/redis"
	"github.com/kbukum/transducekit/redis/redistest"
	"github.com/kbukum/transducekit/server"
	"github.com/kbukum/transducekit/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var topEvens = &plan.Definition{
	Name: "top-evens",
	Steps: []plan.Step{
		{Op: plan.OpFilter, Pred: "even"},
		{Op: plan.OpMap, Fn: "square"},
		{Op: plan.OpTake, Limit: 3},
	},
}

var single = &plan.Definition{Name: "single", Steps: []plan.Step{{Op: plan.OpSingle}}}

var boom = &plan.Definition{Name: "boom", Steps: []plan.Step{{Op: plan.OpMap, Fn: "panic"}}}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, cfg server.Config, opts ...server.Option) http.Handler {
	t.Helper()
	reg := plan.Builtins()
	reg.RegisterTransform("panic", func(any) (any, error) { panic("kaboom") })
	engine := plan.NewEngine(reg, plan.Static(topEvens, single, boom))
	log := logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "test", io.Discard)
	return server.New(cfg, engine, log, opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
	return rr, env
}

func TestRunPlan(t *testing.T) {
	h := newTestServer(t, server.Config{})

	tests := []struct {
		name string
		body string
	}{
		{"array body", "[1,2,3,4,5,6,7,8,9,10]"},
		{"object body", `{"items": [1,2,3,4,5,6,7,8,9,10]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := do(t, h, http.MethodPost, "/v1/plans/top-evens/run", tc.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var rec server.RunRecord
			if err := json.Unmarshal(env.Data, &rec); err != nil {
				t.Fatal(err)
			}
			if fmt.Sprint(rec.Result) != "[4 16 36]" || rec.Count != 3 || rec.Input != 10 {
				t.Errorf("got %+v", rec)
			}
			if rr.Header().Get("X-Run-Id") != rec.ID || rec.ID == "" {
				t.Errorf("run id header %q does not match body %q", rr.Header().Get("X-Run-Id"), rec.ID)
			}
			if rr.Header().Get(middleware.HeaderRequestID) == "" {
				t.Error("expected a generated request id")
			}
		})
	}
}

func TestRunPlan_Errors(t *testing.T) {
	h := newTestServer(t, server.Config{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown plan", "/v1/plans/nope/run", "[1]", http.StatusNotFound, "NOT_FOUND"},
		{"not json", "/v1/plans/top-evens/run", "{oops", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing items", "/v1/plans/top-evens/run", `{"values": [1]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"cardinality", "/v1/plans/single/run", "[1,2]", http.StatusUnprocessableEntity, "CARDINALITY_VIOLATION"},
		{"panic", "/v1/plans/boom/run", "[1]", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := do(t, h, http.MethodPost, tc.path, tc.body)
			if rr.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if env.Error.Code != tc.code {
				t.Errorf("expected %s, got %q", tc.code, env.Error.Code)
			}
		})
	}
}

func TestRunPlan_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, server.Config{MaxBodySize: "8"})
	rr, env := do(t, h, http.MethodPost, "/v1/plans/top-evens/run", "[1,2,3,4,5,6,7,8]")
	if rr.Code != http.StatusBadRequest || env.Error.Code != "INVALID_INPUT" {
		t.Errorf("expected 400 INVALID_INPUT, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestPlans(t *testing.T) {
	h := newTestServer(t, server.Config{})

	rr, env := do(t, h, http.MethodGet, "/v1/plans", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list struct {
		Plans []string `json:"plans"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if strings.Join(list.Plans, ",") != "boom,single,top-evens" {
		t.Errorf("got %v", list.Plans)
	}

	rr, env = do(t, h, http.MethodGet, "/v1/plans/top-evens", "")
	if rr.Code != http.StatusOK || !strings.Contains(string(env.Data), `"op":"filter"`) {
		t.Errorf("got %d %s", rr.Code, env.Data)
	}
}

func TestRuns_Stored(t *testing.T) {
	client, _ := redistest.Start(t)
	store := redis.NewStore[server.RunRecord](client, "runs", 0)
	h := newTestServer(t, server.Config{}, server.WithRunStore(store))

	rr, _ := do(t, h, http.MethodPost, "/v1/plans/top-evens/run", "[2,4]")
	id := rr.Header().Get("X-Run-Id")

	rr, env := do(t, h, http.MethodGet, "/v1/runs/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var rec server.RunRecord
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID != id || fmt.Sprint(rec.Result) != "[4 16]" {
		t.Errorf("got %+v", rec)
	}

	rr, env = do(t, h, http.MethodGet, "/v1/runs/00000000-0000-0000-0000-000000000000", "")
	if rr.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	rr, _ = do(t, h, http.MethodGet, "/v1/runs/not-a-uuid", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed id, got %d", rr.Code)
	}
}

func TestRuns_NoStore(t *testing.T) {
	h := newTestServer(t, server.Config{})
	rr, _ := do(t, h, http.MethodGet, "/v1/runs/00000000-0000-0000-0000-000000000000", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	client, mini := redistest.Start(t)
	h := newTestServer(t, server.Config{}, server.WithServiceName("svc"), server.WithHealthCheckers(client))

	rr, _ := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"service":"svc"`) {
		t.Errorf("got %d %s", rr.Code, rr.Body.String())
	}

	mini.Close()
	rr, _ = do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with redis down, got %d", rr.Code)
	}

	rr, _ = do(t, h, http.MethodGet, "/alive", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /alive, got %d", rr.Code)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := newTestServer(t, server.Config{})
	req := httptest.NewRequest(http.MethodGet, "/v1/plans", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(middleware.HeaderRequestID); got != "req-1" {
		t.Errorf("got %q, want req-1", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 << 20},
		{"512kb", 512 << 10},
		{"1GB", 1 << 30},
		{"2048", 2048},
		{"", 99},
		{"lots", 99},
	}
	for _, tc := range tests {
		if got := middleware.ParseSize(tc.in, 99); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
