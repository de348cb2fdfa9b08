package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	objects   map[string]bool
	listErr   error
	lastQuery string
}

func (f *fakeArchive) LatestObject(ctx context.Context, prefix string) (string, bool, error) {
	f.lastQuery = prefix
	if f.listErr != nil {
		return "", false, f.listErr
	}
	var latest string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) && k > latest {
			latest = k
		}
	}
	return latest, latest != "", nil
}

func (f *fakeArchive) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://storage.local/" + objectName + "?ttl=" + expiry.String(), nil
}

func TestInsightsArchive(t *testing.T) {
	s := newServer(t)
	archive := &fakeArchive{objects: map[string]bool{
		"insights/7/20250101T090000Z.json":  true,
		"insights/7/20250102T090000Z.json":  true,
		"insights/70/20250105T090000Z.json": true,
	}}
	s.router.WithArchive(NewArchiveController(archive, nil))
	s.e = newEchoFor(s.router)

	code, env := s.do(t, http.MethodGet, "/v1/meetings/7/insights-archive", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "insights/7/", archive.lastQuery)

	var out struct {
		ObjectName string `json:"object_name"`
		URL        string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "insights/7/20250102T090000Z.json", out.ObjectName)
	assert.Contains(t, out.URL, "insights/7/20250102T090000Z.json")

	code, env = s.do(t, http.MethodGet, "/v1/meetings/8/insights-archive", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "INSIGHTS_NOT_AVAILABLE", env.Code)

	archive.listErr = fmt.Errorf("bucket offline")
	code, env = s.do(t, http.MethodGet, "/v1/meetings/7/insights-archive", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INTEGRATION_STORAGE_FAILED", env.Code)
	assert.Equal(t, "bucket offline", env.Info)
}
