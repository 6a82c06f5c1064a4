package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/icon/cache"
	"github.com/playreply/playreply/internal/icon/model"
)

func testConfig() config.RedisConfig {
	return config.RedisConfig{IconTTL: time.Hour, NegativeTTL: time.Minute}
}

// newTestService wires the service to an in-process cache and points both
// catalog endpoints at the given test server.
func newTestService(t *testing.T, catalog *httptest.Server) *service {
	t.Helper()
	cfg := testConfig()
	svc := New(cache.New(cfg, zap.NewNop().Sugar()), cfg, zap.NewNop().Sugar()).(*service)
	if catalog != nil {
		svc.itunesURL = catalog.URL + "/lookup?bundleId=%s"
		svc.playURL = catalog.URL + "/store/apps/details?id=%s"
	}
	return svc
}

func TestService_Lookup_Validation(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Lookup(context.Background(), "", "ios")
	assert.ErrorIs(t, err, model.ErrMissingPackageName)

	_, err = svc.Lookup(context.Background(), "com.example.app", "windows")
	assert.ErrorIs(t, err, model.ErrUnsupportedPlatform)
}

func TestService_Lookup_IOS(t *testing.T) {
	t.Run("prefers 512px artwork", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "com.example.app", r.URL.Query().Get("bundleId"))
			w.Write([]byte(`{"resultCount":1,"results":[{"artworkUrl512":"https://is1.mzstatic.com/big.png","artworkUrl100":"https://is1.mzstatic.com/small.png"}]}`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "ios")
		require.NoError(t, err)
		require.NotNil(t, resp.IconURL)
		assert.Equal(t, "https://is1.mzstatic.com/big.png", *resp.IconURL)
		assert.Empty(t, resp.Error)
	})

	t.Run("falls back to 100px artwork", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"resultCount":1,"results":[{"artworkUrl100":"https://is1.mzstatic.com/small.png"}]}`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "ios")
		require.NoError(t, err)
		require.NotNil(t, resp.IconURL)
		assert.Equal(t, "https://is1.mzstatic.com/small.png", *resp.IconURL)
	})

	t.Run("no results is not an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"resultCount":0,"results":[]}`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "ios")
		require.NoError(t, err)
		assert.Nil(t, resp.IconURL)
		assert.Equal(t, "icon not found", resp.Error)
	})
}

func TestService_Lookup_Android(t *testing.T) {
	t.Run("og:image with size rewrite", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "com.example.app", r.URL.Query().Get("id"))
			w.Write([]byte(`<html><head><meta property="og:image" content="https://play-lh.googleusercontent.com/abc123=w240-h480-rw"></head></html>`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "android")
		require.NoError(t, err)
		require.NotNil(t, resp.IconURL)
		assert.Equal(t, "https://play-lh.googleusercontent.com/abc123=s512", *resp.IconURL)
	})

	t.Run("raw CDN URL gets a size suffix", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body><img src="https://play-lh.googleusercontent.com/xyz789"></body></html>`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "android")
		require.NoError(t, err)
		require.NotNil(t, resp.IconURL)
		assert.Equal(t, "https://play-lh.googleusercontent.com/xyz789=s512", *resp.IconURL)
	})

	t.Run("page without icon", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body>nothing here</body></html>`))
		}))
		defer ts.Close()

		resp, err := newTestService(t, ts).Lookup(context.Background(), "com.example.app", "android")
		require.NoError(t, err)
		assert.Nil(t, resp.IconURL)
		assert.Equal(t, "icon not found", resp.Error)
	})
}

func TestService_Lookup_Caching(t *testing.T) {
	t.Run("second lookup served from cache", func(t *testing.T) {
		var hits atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{"resultCount":1,"results":[{"artworkUrl512":"https://is1.mzstatic.com/big.png"}]}`))
		}))
		defer ts.Close()

		svc := newTestService(t, ts)
		for i := 0; i < 3; i++ {
			resp, err := svc.Lookup(context.Background(), "com.example.app", "ios")
			require.NoError(t, err)
			require.NotNil(t, resp.IconURL)
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("failed lookup is negative-cached", func(t *testing.T) {
		var hits atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		svc := newTestService(t, ts)
		for i := 0; i < 3; i++ {
			resp, err := svc.Lookup(context.Background(), "com.example.app", "ios")
			require.NoError(t, err)
			assert.Nil(t, resp.IconURL)
			assert.Equal(t, "icon not found", resp.Error)
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("platforms are cached independently", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/lookup" {
				w.Write([]byte(`{"resultCount":1,"results":[{"artworkUrl512":"https://is1.mzstatic.com/ios.png"}]}`))
				return
			}
			w.Write([]byte(`<meta property="og:image" content="https://play-lh.googleusercontent.com/droid=s64">`))
		}))
		defer ts.Close()

		svc := newTestService(t, ts)

		iosResp, err := svc.Lookup(context.Background(), "com.example.app", "ios")
		require.NoError(t, err)
		require.NotNil(t, iosResp.IconURL)

		androidResp, err := svc.Lookup(context.Background(), "com.example.app", "android")
		require.NoError(t, err)
		require.NotNil(t, androidResp.IconURL)

		assert.NotEqual(t, *iosResp.IconURL, *androidResp.IconURL)
	})
}
