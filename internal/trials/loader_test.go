package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/cache"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trialFile = `[
  {
    "story": "Anna puts her keys in the drawer and leaves.",
    "question": "Where will Anna look for her keys?",
    "answers": ["In the drawer (Correct Answer)", "On the table"],
    "data_source": "false_belief",
    "id": "fb_001"
  },
  {
    "story": "Ben sees the cake in the fridge.",
    "question": "Where is the cake?",
    "answers": ["In the oven", "In the fridge (Correct Answer)"],
    "answers_no_label": ["In the oven", "In the fridge"],
    "true_labels": [0, 1],
    "data_source": "true_belief",
    "id": "tb_001"
  }
]`

type memoryCache struct {
	entries map[string][]byte
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.gets++
	data, ok := m.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestLoader_LoadHTTP(t *testing.T) {
	var hits atomic.Int32
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, trialFile)
	}))
	defer srv.Close()

	loader := NewLoader(LoaderConfig{
		SourceURL: srv.URL + "/trials?c={condition}",
		Logger:    utils.NewNopLogger(),
	})

	trials, err := loader.Load(context.Background(), "false belief")
	require.NoError(t, err)
	require.Len(t, trials, 2)
	assert.Equal(t, "c=false+belief", gotPath)
	assert.EqualValues(t, 1, hits.Load())

	assert.Equal(t, "fb_001", trials[0].ID)
	assert.Equal(t, []string{"In the drawer", "On the table"}, trials[0].AnswersNoLabel)
	assert.Equal(t, []int{1, 0}, trials[0].TrueLabels)
	assert.Equal(t, []string{"In the oven", "In the fridge"}, trials[1].AnswersNoLabel)
}

func TestLoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[{"story": `)
			},
		},
		{
			name: "empty array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			loader := NewLoader(LoaderConfig{SourceURL: srv.URL, Logger: utils.NewNopLogger()})
			trials, err := loader.Load(context.Background(), "x")
			assert.Error(t, err)
			assert.Nil(t, trials)
		})
	}
}

func TestLoader_LoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ours.json"), []byte(trialFile), 0o600))

	loader := NewLoader(LoaderConfig{
		SourceURL: filepath.Join(dir, "{condition}.json"),
		Logger:    utils.NewNopLogger(),
	})

	trials, err := loader.Load(context.Background(), "ours")
	require.NoError(t, err)
	assert.Len(t, trials, 2)

	_, err = loader.Load(context.Background(), "missing")
	assert.Error(t, err)
}

func TestLoader_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, trialFile)
	}))
	defer srv.Close()

	c := newMemoryCache()
	loader := NewLoader(LoaderConfig{
		SourceURL: srv.URL + "/{condition}",
		Cache:     c,
		CacheTTL:  time.Minute,
		Logger:    utils.NewNopLogger(),
	})

	first, err := loader.Load(context.Background(), "ours")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "ours")
	require.NoError(t, err)

	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.gets)
}

func TestLoader_Invalidate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, trialFile)
	}))
	defer srv.Close()

	c := newMemoryCache()
	c.entries["survey:session:keep"] = []byte(`{}`)
	loader := NewLoader(LoaderConfig{
		SourceURL: srv.URL + "/{condition}",
		Cache:     c,
		CacheTTL:  time.Minute,
		Logger:    utils.NewNopLogger(),
	})
	ctx := context.Background()

	for _, condition := range []string{"ours", "expert"} {
		_, err := loader.Load(ctx, condition)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, hits.Load())

	require.NoError(t, loader.Invalidate(ctx, "ours"))
	_, err := loader.Load(ctx, "ours")
	require.NoError(t, err)
	_, err = loader.Load(ctx, "expert")
	require.NoError(t, err)
	assert.EqualValues(t, 3, hits.Load())

	require.NoError(t, loader.Invalidate(ctx))
	assert.Len(t, c.entries, 1)
	assert.Contains(t, c.entries, "survey:session:keep")

	noCache := NewLoader(LoaderConfig{SourceURL: srv.URL + "/{condition}"})
	assert.NoError(t, noCache.Invalidate(ctx, "ours"))
}

func TestNormalizeLabels(t *testing.T) {
	tr := models.Trial{Answers: []string{"A", "B (Correct Answer)", "C"}}
	NormalizeLabels(&tr)

	assert.Equal(t, []string{"A", "B", "C"}, tr.AnswersNoLabel)
	assert.Equal(t, []int{0, 1, 0}, tr.TrueLabels)
	assert.Equal(t, []string{"A", "B (Correct Answer)", "C"}, tr.Answers)
}
