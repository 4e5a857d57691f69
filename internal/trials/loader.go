package trials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/cache"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
)

// ConditionPlaceholder is replaced by the query-escaped condition in SourceURL.
const ConditionPlaceholder = "{condition}"

var ErrNoTrials = errors.New("trial file contains no trials")

type LoaderConfig struct {
	SourceURL  string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Cache      cache.CacheService
	Logger     utils.Logger
}

// Loader fetches the trial file for a condition from HTTP or the local disk.
type Loader struct {
	sourceURL string
	client    *http.Client
	cache     cache.CacheService
	cacheTTL  time.Duration
	logger    utils.Logger
}

func NewLoader(cfg LoaderConfig) *Loader {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	return &Loader{
		sourceURL: cfg.SourceURL,
		client:    client,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		logger:    logger.With("component", "trial_loader"),
	}
}

// ResolveSource returns the location of the trial file for condition.
func (l *Loader) ResolveSource(condition string) string {
	return strings.ReplaceAll(l.sourceURL, ConditionPlaceholder, url.QueryEscape(condition))
}

// Load returns the decoded trials for condition in file order.
func (l *Loader) Load(ctx context.Context, condition string) ([]models.Trial, error) {
	source := l.ResolveSource(condition)
	key := cacheKey(source)

	var trials []models.Trial
	if l.cache != nil && l.cacheTTL > 0 {
		if err := l.cache.Get(ctx, key, &trials); err == nil && len(trials) > 0 {
			l.logger.DebugContext(ctx, "Trial file served from cache", "source", source, "count", len(trials))
			return trials, nil
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			l.logger.WarnContext(ctx, "Trial cache read failed", "source", source, "error", err)
		}
	}

	start := time.Now()
	raw, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &trials); err != nil {
		return nil, fmt.Errorf("decode trial file %s: %w", source, err)
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoTrials)
	}
	for i := range trials {
		NormalizeLabels(&trials[i])
	}

	l.logger.InfoContext(ctx, "Trial file loaded",
		"source", source,
		"count", len(trials),
		"duration", time.Since(start).String())

	if l.cache != nil && l.cacheTTL > 0 {
		if err := l.cache.Set(ctx, key, trials, l.cacheTTL); err != nil {
			l.logger.WarnContext(ctx, "Trial cache write failed", "source", source, "error", err)
		}
	}

	return trials, nil
}

// Invalidate drops the cached copy of each condition's trial file, or every
// cached trial file when no condition is given.
func (l *Loader) Invalidate(ctx context.Context, conditions ...string) error {
	if l.cache == nil {
		return nil
	}
	if len(conditions) == 0 {
		return l.cache.DeletePattern(ctx, cacheKeyPrefix+"*")
	}
	for _, condition := range conditions {
		if err := l.cache.Delete(ctx, cacheKey(l.ResolveSource(condition))); err != nil {
			return fmt.Errorf("evict trials for %s: %w", condition, err)
		}
	}
	return nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		raw, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("read trial file %s: %w", source, err)
		}
		return raw, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build trial request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trial file %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch trial file %s: unexpected status %d", source, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read trial response %s: %w", source, err)
	}
	return raw, nil
}

const cacheKeyPrefix = "survey:trials:"

func cacheKey(source string) string {
	return cacheKeyPrefix + source
}
