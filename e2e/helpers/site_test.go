package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/popups/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<title>Popups</title>"))
		case "/moved/":
			http.Redirect(w, r, "/popups/", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	site := NewSiteClient(srv.URL + "/")

	resp, err := site.Get(context.Background(), "/popups/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.String(), "Popups")

	resp, err = site.Get(context.Background(), "/moved/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode, "redirects are not followed")

	resp, err = site.Get(context.Background(), "/nope/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSiteClientWaitReady(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, NewSiteClient(srv.URL).WaitReady(ctx, "/", 10*time.Millisecond))
	assert.GreaterOrEqual(t, hits.Load(), int32(3))
}

func TestSiteClientWaitReadyGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := NewSiteClient(srv.URL).WaitReady(ctx, "/", 10*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
