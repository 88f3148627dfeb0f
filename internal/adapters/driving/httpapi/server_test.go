package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/services"
)

// executorFunc adapts a function to services.Executor.
type executorFunc func(ctx context.Context, handle domain.RunHandle) domain.RunResult

func (f executorFunc) Execute(ctx context.Context, handle domain.RunHandle) domain.RunResult {
	return f(ctx, handle)
}

// blockingExecutor runs until its context is cancelled.
func blockingExecutor() services.Executor {
	return executorFunc(func(ctx context.Context, handle domain.RunHandle) domain.RunResult {
		<-ctx.Done()
		return domain.RunResult{Handle: handle, Outcome: domain.OutcomeCancelled}
	})
}

type testEnv struct {
	scheduler *services.Scheduler
	store     *memory.SchedulerStore
	ts        *httptest.Server
}

func newTestEnv(t *testing.T, exec services.Executor) *testEnv {
	t.Helper()
	scheduler := services.NewScheduler(exec, nil)
	store := memory.NewSchedulerStore()
	srv := NewServer(":0", scheduler, services.NewStatusService(scheduler, store), nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		if h := scheduler.ActiveHandle(); !h.IsZero() {
			_ = scheduler.RequestStop(h)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = scheduler.Shutdown(ctx)
	})
	return &testEnv{scheduler: scheduler, store: store, ts: ts}
}

func doRequest(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	var body healthResponse
	status := doRequest(t, http.MethodGet, env.ts.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
}

func TestStartRun_ThenBusy(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	var started runResponse
	status := doRequest(t, http.MethodPost, env.ts.URL+"/v1/runs", &started)
	require.Equal(t, http.StatusAccepted, status)
	assert.NotEmpty(t, started.Handle)
	assert.Equal(t, "running", started.State)

	var busy errorResponse
	status = doRequest(t, http.MethodPost, env.ts.URL+"/v1/runs", &busy)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, started.Handle, busy.Handle)
	assert.Contains(t, busy.Error, "busy")
}

func TestStopRun(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	var started runResponse
	require.Equal(t, http.StatusAccepted, doRequest(t, http.MethodPost, env.ts.URL+"/v1/runs", &started))

	var stopped runResponse
	status := doRequest(t, http.MethodDelete, env.ts.URL+"/v1/runs/"+started.Handle, &stopped)
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, started.Handle, stopped.Handle)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := env.scheduler.Wait(ctx, domain.RunHandle(started.Handle))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, result.Outcome)

	// The handle is stale once the run has released
	var stale errorResponse
	status = doRequest(t, http.MethodDelete, env.ts.URL+"/v1/runs/"+started.Handle, &stale)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStopRun_UnknownHandle(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	var started runResponse
	require.Equal(t, http.StatusAccepted, doRequest(t, http.MethodPost, env.ts.URL+"/v1/runs", &started))

	var body errorResponse
	status := doRequest(t, http.MethodDelete, env.ts.URL+"/v1/runs/01NOTTHEACTIVEHANDLE", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domain.RunRunning, env.scheduler.CurrentState())
}

func TestGetState(t *testing.T) {
	env := newTestEnv(t, executorFunc(func(_ context.Context, handle domain.RunHandle) domain.RunResult {
		return domain.RunResult{Handle: handle, Outcome: domain.OutcomeCompleted, Items: 3}
	}))

	var idle stateResponse
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, env.ts.URL+"/v1/state", &idle))
	assert.Equal(t, "idle", idle.State)
	assert.Empty(t, idle.Handle)
	assert.Nil(t, idle.LastResult)

	handle, err := env.scheduler.RequestRun(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = env.scheduler.Wait(ctx, handle)
	require.NoError(t, err)

	next := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, env.store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID: domain.TaskIDMediaSync, Name: "Media Sync", Interval: time.Hour, Enabled: true, NextRun: next,
	}))

	var after stateResponse
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, env.ts.URL+"/v1/state", &after))
	assert.Equal(t, "idle", after.State)
	require.NotNil(t, after.LastResult)
	assert.Equal(t, handle.String(), after.LastResult.Handle)
	assert.Equal(t, "completed", after.LastResult.Outcome)
	assert.Equal(t, 3, after.LastResult.Items)
	require.NotNil(t, after.NextRun)
	assert.True(t, next.Equal(*after.NextRun))
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		outcome, reason := domain.OutcomeCompleted, ""
		if i == 1 {
			outcome, reason = domain.OutcomeFailed, "boom"
		}
		result := domain.TaskResultFromRun(domain.TaskIDMediaSync, domain.RunResult{
			Handle:    domain.RunHandle("h" + string(rune('0'+i))),
			Outcome:   outcome,
			Reason:    reason,
			Items:     i,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			EndedAt:   base.Add(time.Duration(i)*time.Hour + time.Minute),
		})
		require.NoError(t, env.store.RecordResult(context.Background(), &result))
	}

	var body historyResponse
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, env.ts.URL+"/v1/history?limit=2", &body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, "h2", body.Results[0].Handle)
	assert.Equal(t, "h1", body.Results[1].Handle)
	assert.Equal(t, "failed", body.Results[1].Outcome)
	assert.Equal(t, "boom", body.Results[1].Reason)

	var all historyResponse
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, env.ts.URL+"/v1/history?limit=abc", &all))
	assert.Len(t, all.Results, 3)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	doRequest(t, http.MethodGet, env.ts.URL+"/healthz", nil)

	resp, err := http.Get(env.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `mediasync_http_requests_total{method="GET",path="/healthz",status="200"}`)
}

func TestPanicRecovery(t *testing.T) {
	srv := NewServer(":0", services.NewScheduler(blockingExecutor(), nil), nil, nil)
	srv.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("test panic")
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/panic")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t, blockingExecutor())

	req, err := http.NewRequest(http.MethodOptions, env.ts.URL+"/v1/state", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", services.NewScheduler(blockingExecutor(), nil), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMount(t *testing.T) {
	srv := NewServer(":0", services.NewScheduler(blockingExecutor(), nil), nil, nil)
	srv.Mount("/extra", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/extra/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
