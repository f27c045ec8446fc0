package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/adapters/httpapi"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
)

func seededServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	run := &domain.TestRun{
		ID: "run-1",
		Results: []domain.TestResult{
			{Name: "greeting", Status: domain.StatusPass, NodeTrace: []string{"start", "end"}},
			{Name: "billing", Status: domain.StatusFail},
		},
	}
	run.Seal()
	require.NoError(t, store.Save(t.Context(), run))

	srv := httptest.NewServer(httpapi.NewHandler(store))
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_GetRun(t *testing.T) {
	srv := seededServer(t)

	resp, err := http.Get(srv.URL + "/runs/run-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run domain.TestRun
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 1, run.Passed)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Results, 2)
	assert.Equal(t, []string{"start", "end"}, run.Results[0].NodeTrace)
}

func TestServer_GetRunNotFound(t *testing.T) {
	srv := seededServer(t)

	resp, err := http.Get(srv.URL + "/runs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListRuns(t *testing.T) {
	srv := seededServer(t)

	resp, err := http.Get(srv.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"run-1"}, body.Runs)
}

func TestServer_DeleteRun(t *testing.T) {
	srv := seededServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/runs/run-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/runs/run-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	srv := seededServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
