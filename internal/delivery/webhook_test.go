package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dossier/internal/types"
)

func completedJob() types.Job {
	return types.Job{
		ID:     "job-1",
		Status: types.JobComplete,
		Output: &types.GeneratedDocument{Title: "T", FullText: "# T\n\nbody"},
	}
}

func TestDeliverSuccessFirstAttempt(t *testing.T) {
	var got payload
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(SignatureHeader)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	d := NewDeliverer(3, time.Millisecond, time.Second, "s3cret")
	err := d.Deliver(context.Background(), completedJob(), Target{
		URL:      srv.URL,
		Metadata: map[string]string{"tenant": "acme"},
	})
	require.NoError(t, err)

	require.Equal(t, "s3cret", header)
	require.Equal(t, "job-1", got.JobID)
	require.Equal(t, "completed", got.Status)
	require.Equal(t, "acme", got.Metadata["tenant"])
	require.NotNil(t, got.Output)
	require.Equal(t, "# T\n\nbody", got.Output.ContentRaw)
	require.Equal(t, "T", got.Output.ContentStructured.Title)
}

func TestDeliverFailedJobOmitsOutput(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	job := types.Job{ID: "job-2", Status: types.JobFailed, Error: "stage landscape failed"}
	err := NewDeliverer(1, time.Millisecond, time.Second, "").Deliver(context.Background(), job, Target{URL: srv.URL})
	require.NoError(t, err)

	require.Equal(t, "failed", got.Status)
	require.Equal(t, "stage landscape failed", got.Error)
	require.Nil(t, got.Output)
}

func TestDeliverExactlyMaxAttemptsWithIncreasingDelays(t *testing.T) {
	var mu sync.Mutex
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	const maxAttempts = 4
	base := 30 * time.Millisecond
	d := NewDeliverer(maxAttempts, base, time.Second, "")

	err := d.Deliver(context.Background(), completedJob(), Target{URL: srv.URL})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, times, maxAttempts, "an always-failing endpoint gets exactly max attempts")

	// Linear backoff: each gap strictly larger than the one before.
	var gaps []time.Duration
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i].Sub(times[i-1]))
	}
	for i := 1; i < len(gaps); i++ {
		require.Greater(t, gaps[i], gaps[i-1], "gap %d (%v) should exceed gap %d (%v)", i, gaps[i], i-1, gaps[i-1])
	}
	require.GreaterOrEqual(t, gaps[0], base)
}

func TestDeliverPerTargetSecretOverridesShared(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(SignatureHeader)
	}))
	defer srv.Close()

	d := NewDeliverer(1, time.Millisecond, time.Second, "shared")
	err := d.Deliver(context.Background(), completedJob(), Target{URL: srv.URL, Secret: "override"})
	require.NoError(t, err)
	require.Equal(t, "override", header)
}

func TestDeliverCanceledContextStopsRetrying(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDeliverer(10, 50*time.Millisecond, time.Second, "")

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := d.Deliver(ctx, completedJob(), Target{URL: srv.URL})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Less(t, attempts, 10, "cancellation must cut retries short")
}
