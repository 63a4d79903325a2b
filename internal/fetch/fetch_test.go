package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Language"), "ja")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>店舗一覧</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 200, page.StatusCode)
	assert.Contains(t, page.HTML, "店舗一覧")
	assert.False(t, page.Redirected)
}

func TestHTTPFetcherDecodesShiftJIS(t *testing.T) {
	// "店舗" in Shift_JIS
	sjis := []byte{0x93, 0x58, 0x95, 0xdc}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=shift_jis")
		w.Write(sjis)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "店舗")
}

func TestHTTPFetcherFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved here"))
	})

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	page, err := f.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)

	assert.True(t, page.Redirected)
	assert.Equal(t, srv.URL+"/new", page.FinalURL)
	assert.Contains(t, page.HTML, "moved here")
}

func TestHTTPFetcherContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	_, err := f.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestHeadAlive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := Head(context.Background(), srv.URL)
	assert.Equal(t, 200, res.StatusCode)
	assert.Empty(t, res.Err)
	assert.True(t, res.Alive())
}

func TestHeadRedirect(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	res := Head(context.Background(), srv.URL+"/a")
	assert.True(t, res.Alive())
	assert.True(t, res.Redirected)
	assert.Equal(t, srv.URL+"/b", res.FinalURL)
}

func TestHeadEmptyURL(t *testing.T) {
	res := Head(context.Background(), "")
	assert.Equal(t, "empty_url", res.Err)
	assert.False(t, res.Alive())
}

func TestHeadConnectionError(t *testing.T) {
	// Nothing listens here.
	res := Head(context.Background(), "http://127.0.0.1:1")
	assert.Equal(t, "connection_error", res.Err)
	assert.False(t, res.Alive())
}

func TestHeadNotFoundIsNotAlive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := Head(context.Background(), srv.URL)
	assert.Empty(t, res.Err)
	assert.False(t, res.Alive())
}
