package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repotutor/internal/job"
	"repotutor/internal/tutorial"
	"repotutor/internal/util/jsonutil"
)

// gatedBuilder blocks in Build until released, so tests can observe
// intermediate job states deterministically.
type gatedBuilder struct {
	release chan struct{}
	result  *tutorial.Tutorial
	err     error
}

func (g *gatedBuilder) Build(ctx context.Context, owner, repo string, report func(tutorial.Stage)) (*tutorial.Tutorial, error) {
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if report != nil {
		report(tutorial.StageFetching)
		report(tutorial.StageGenerating)
		report(tutorial.StageResolving)
	}
	return g.result, g.err
}

func newTestServer(t *testing.T, b Builder) (*httptest.Server, *job.Manager) {
	t.Helper()
	jobs := job.NewManager()
	mux := http.NewServeMux()
	New(jobs, b).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, jobs
}

func postTutorial(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/tutorials", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func TestCreateTutorial_Validation(t *testing.T) {
	srv, _ := newTestServer(t, &gatedBuilder{})

	resp := postTutorial(t, srv, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postTutorial(t, srv, `{"owner":"","repo":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateAndPollTutorial(t *testing.T) {
	want := &tutorial.Tutorial{Repo: "acme/widgets", Title: "T", Chapters: []tutorial.Chapter{{Title: "one"}}}
	srv, _ := newTestServer(t, &gatedBuilder{result: want})

	resp := postTutorial(t, srv, `{"owner":"acme","repo":"widgets"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var created struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEmpty(t, created.JobID)

	deadline := time.Now().Add(2 * time.Second)
	for {
		r, err := http.Get(srv.URL + "/api/tutorials/" + created.JobID)
		require.NoError(t, err)
		var snap job.Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&snap))
		r.Body.Close()
		if snap.Status == job.StatusDone {
			require.NotNil(t, snap.Result)
			assert.Equal(t, "acme/widgets", snap.Result.Repo)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished, last status %s", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetTutorial_Unknown(t *testing.T) {
	srv, _ := newTestServer(t, &gatedBuilder{})
	r, err := http.Get(srv.URL + "/api/tutorials/does-not-exist")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestMalformedResponseBecomesRetryableFailure(t *testing.T) {
	b := &gatedBuilder{err: &jsonutil.MalformedResponseError{Raw: "garbage from model"}}
	srv, _ := newTestServer(t, b)

	resp := postTutorial(t, srv, `{"owner":"acme","repo":"widgets"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var created struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		r, err := http.Get(srv.URL + "/api/tutorials/" + created.JobID)
		require.NoError(t, err)
		var snap job.Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&snap))
		r.Body.Close()
		if snap.Status == job.StatusFailed {
			assert.Contains(t, snap.Error, "retry")
			assert.NotContains(t, snap.Error, "garbage", "raw model text must stay out of user-facing errors")
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("job never failed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatchTutorialStreamsUntilDone(t *testing.T) {
	release := make(chan struct{})
	b := &gatedBuilder{release: release, result: &tutorial.Tutorial{Repo: "acme/widgets"}}
	srv, _ := newTestServer(t, b)

	resp := postTutorial(t, srv, `{"owner":"acme","repo":"widgets"}`)
	var created struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/tutorials/" + created.JobID + "/ws"
	conn, wsResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if wsResp != nil {
		wsResp.Body.Close()
	}
	defer conn.Close()

	close(release)

	var last watchOutbound
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame watchOutbound
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		last = frame
		if frame.Done {
			break
		}
	}
	assert.True(t, last.Done)
	assert.Equal(t, job.StatusDone, last.Status)
	assert.Equal(t, created.JobID, last.JobID)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &gatedBuilder{})
	r, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
}
