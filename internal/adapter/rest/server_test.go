package rest_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cronkeeper/internal/adapter/rest"
	"cronkeeper/internal/discovery"
	"cronkeeper/internal/jobs"
	"cronkeeper/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	crontabPath := filepath.Join(dir, "crontab")
	scriptRoot := filepath.Join(dir, "scripts")
	require.NoError(t, os.MkdirAll(scriptRoot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scriptRoot, "fines.pl"), []byte("#!/usr/bin/perl\n"), 0o755))
	require.NoError(t, os.WriteFile(crontabPath,
		[]byte("KOHA_CRON_PATH="+scriptRoot+"\n"), 0o644))

	st := store.New(crontabPath, filepath.Join(dir, "backups"))
	svc := jobs.NewService(st)
	provider := func() (*discovery.Engine, error) {
		root, ok, err := svc.ScriptRoot()
		if err != nil || !ok {
			return nil, err
		}
		return discovery.New(root), nil
	}
	srv := rest.NewServer(svc, st, provider, slog.Default())
	return srv.Router(), crontabPath
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJobsLifecycle(t *testing.T) {
	r, _ := newTestServer(t)

	// empty listing before anything is created
	w := doJSON(t, r, http.MethodGet, "/api/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, r, http.MethodPost, "/api/jobs",
		`{"name":"Fines","schedule":"0 5 * * *","command":"$KOHA_CRON_PATH/fines.pl"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = doJSON(t, r, http.MethodGet, "/api/jobs/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/jobs/"+created.ID, `{"description":"charge fines"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "charge fines", updated.Description)
	assert.Equal(t, "Fines", updated.Name)

	w = doJSON(t, r, http.MethodPost, "/api/jobs/"+created.ID+"/disable", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/entries", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []jobs.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Enabled)
	assert.True(t, entries[0].Managed)

	w = doJSON(t, r, http.MethodDelete, "/api/jobs/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/jobs/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateJob_Rejections(t *testing.T) {
	r, _ := newTestServer(t)

	// malformed body
	w := doJSON(t, r, http.MethodPost, "/api/jobs", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing required fields
	w = doJSON(t, r, http.MethodPost, "/api/jobs", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownJobRoutes(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPut, "/api/jobs/nope", `{"name":"y"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/jobs/nope/enable", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackups(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/backups", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, r, http.MethodPost, "/api/backups", `{"label":"on-enable"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var b store.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "on-enable", b.Label)

	w = doJSON(t, r, http.MethodPost, "/api/backups", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/backups", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestScripts(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/scripts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var scripts []discovery.Script
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scripts))
	require.Len(t, scripts, 1)
	assert.Equal(t, "fines.pl", scripts[0].Name)

	w = doJSON(t, r, http.MethodGet, "/api/scripts/args?path=%24KOHA_CRON_PATH%2Ffines.pl", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fines.pl")

	w = doJSON(t, r, http.MethodGet, "/api/scripts/args?path=%24KOHA_CRON_PATH%2Fnope.pl", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/scripts/args", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
