// Package service resolves app icons from the public store catalogs.
// Both lookups are best-effort: any failure yields a null icon, never an
// error to the caller, and failed lookups are negative-cached so the
// catalogs aren't hammered on every page load.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/icon/cache"
	"github.com/playreply/playreply/internal/icon/model"
)

const (
	itunesLookupURL = "https://itunes.apple.com/lookup?bundleId=%s"
	playStoreURL    = "https://play.google.com/store/apps/details?id=%s&hl=en"
)

var (
	ogImageRe = regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]+)"`)
	playCDNRe = regexp.MustCompile(`https://play-lh\.googleusercontent\.com/[A-Za-z0-9_\-]+`)
	// trailing =s64 / =w240-h480 style size suffix on Play CDN URLs
	sizeSuffixRe = regexp.MustCompile(`=[sw]\d+(-h\d+)?(-rw)?$`)
)

// Service defines the interface for icon lookups.
type Service interface {
	// Lookup resolves the store icon URL for a package, from cache when
	// possible. A nil IconURL means no icon is available right now.
	Lookup(ctx context.Context, packageName, platform string) (*model.IconResponse, error)
}

type service struct {
	cache  cache.Cache
	client *http.Client
	cfg    config.RedisConfig
	logger *zap.SugaredLogger

	// catalog endpoints, overridden in tests
	itunesURL string
	playURL   string
}

// New creates a new icon service instance.
func New(iconCache cache.Cache, cfg config.RedisConfig, logger *zap.SugaredLogger) Service {
	return &service{
		cache:     iconCache,
		client:    &http.Client{Timeout: 10 * time.Second},
		cfg:       cfg,
		logger:    logger,
		itunesURL: itunesLookupURL,
		playURL:   playStoreURL,
	}
}

// Lookup resolves the store icon URL for a package.
func (s *service) Lookup(ctx context.Context, packageName, platform string) (*model.IconResponse, error) {
	if packageName == "" {
		return nil, model.ErrMissingPackageName
	}
	if platform != appModel.PlatformAndroid && platform != appModel.PlatformIOS {
		return nil, model.ErrUnsupportedPlatform
	}

	key := fmt.Sprintf("app_icon:%s:%s", platform, packageName)
	if cached, found, err := s.cache.Get(ctx, key); err == nil && found {
		if cached == "" {
			// Negative entry: a recent lookup failed.
			return &model.IconResponse{IconURL: nil, Error: "icon not found"}, nil
		}
		return &model.IconResponse{IconURL: &cached}, nil
	}

	var iconURL string
	var err error
	if platform == appModel.PlatformIOS {
		iconURL, err = s.fetchIOS(ctx, packageName)
	} else {
		iconURL, err = s.fetchAndroid(ctx, packageName)
	}

	if err != nil || iconURL == "" {
		if err != nil {
			s.logger.Warnw("icon lookup failed",
				"package", packageName, "platform", platform, "error", err)
		}
		if cacheErr := s.cache.Set(ctx, key, "", s.cfg.NegativeTTL); cacheErr != nil {
			s.logger.Warnw("icon cache write failed", "error", cacheErr)
		}
		return &model.IconResponse{IconURL: nil, Error: "icon not found"}, nil
	}

	if cacheErr := s.cache.Set(ctx, key, iconURL, s.cfg.IconTTL); cacheErr != nil {
		s.logger.Warnw("icon cache write failed", "error", cacheErr)
	}
	return &model.IconResponse{IconURL: &iconURL}, nil
}

// fetchIOS queries the iTunes lookup API, preferring the 512px artwork.
func (s *service) fetchIOS(ctx context.Context, bundleID string) (string, error) {
	body, err := s.get(ctx, fmt.Sprintf(s.itunesURL, url.QueryEscape(bundleID)))
	if err != nil {
		return "", err
	}

	var result struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			ArtworkURL512 string `json:"artworkUrl512"`
			ArtworkURL100 string `json:"artworkUrl100"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.ResultCount == 0 || len(result.Results) == 0 {
		return "", nil
	}

	if result.Results[0].ArtworkURL512 != "" {
		return result.Results[0].ArtworkURL512, nil
	}
	return result.Results[0].ArtworkURL100, nil
}

// fetchAndroid scrapes the public Play store page for the og:image meta
// tag or a raw CDN URL, then rewrites the size suffix to a 512px rendition.
func (s *service) fetchAndroid(ctx context.Context, packageName string) (string, error) {
	body, err := s.get(ctx, fmt.Sprintf(s.playURL, url.QueryEscape(packageName)))
	if err != nil {
		return "", err
	}
	html := string(body)

	iconURL := ""
	if m := ogImageRe.FindStringSubmatch(html); len(m) == 2 {
		iconURL = m[1]
	} else if m := playCDNRe.FindString(html); m != "" {
		iconURL = m
	}
	if iconURL == "" {
		return "", nil
	}

	if sizeSuffixRe.MatchString(iconURL) {
		iconURL = sizeSuffixRe.ReplaceAllString(iconURL, "=s512")
	} else if strings.HasPrefix(iconURL, "https://play-lh.googleusercontent.com/") && !strings.Contains(iconURL, "=") {
		iconURL += "=s512"
	}
	return iconURL, nil
}

func (s *service) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 2<<20))
}
