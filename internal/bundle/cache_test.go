package bundle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu          sync.Mutex
	scriptCalls map[Variant]int
	missing     map[Variant]bool
	styleErr    error
}

func newFakeLoader(missing ...Variant) *fakeLoader {
	l := &fakeLoader{
		scriptCalls: make(map[Variant]int),
		missing:     make(map[Variant]bool),
	}
	for _, v := range missing {
		l.missing[v] = true
	}
	return l
}

func (l *fakeLoader) Script(v Variant) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scriptCalls[v]++
	if l.missing[v] {
		return "", errors.New("artifact missing")
	}
	return "// bundle " + v.String(), nil
}

func (l *fakeLoader) Style(v Variant) (string, error) {
	if l.styleErr != nil {
		return "", l.styleErr
	}
	if v == VariantFull {
		return "pre{}", nil
	}
	return "", nil
}

func TestCacheGetMemoizesFirstLoad(t *testing.T) {
	loader := newFakeLoader()
	cache := NewCache(loader)

	entry, ok := cache.Get(context.Background(), VariantBalanced)
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Equal(t, VariantBalanced, entry.Variant)

	again, ok := cache.Get(context.Background(), VariantBalanced)
	require.True(t, ok)
	assert.Same(t, entry, again)
	assert.Equal(t, 1, loader.scriptCalls[VariantBalanced])
}

func TestCacheFallsBackToSmallerVariant(t *testing.T) {
	loader := newFakeLoader(VariantFull, VariantBalanced)
	cache := NewCache(loader)

	entry, ok := cache.Get(context.Background(), VariantFull)
	require.True(t, ok)
	assert.Equal(t, VariantMinimal, entry.Variant)
	assert.Equal(t, 1, loader.scriptCalls[VariantFull])
	assert.Equal(t, 1, loader.scriptCalls[VariantBalanced])
	assert.Equal(t, 1, loader.scriptCalls[VariantMinimal])
}

func TestCacheReportsUnavailableWhenNothingLoads(t *testing.T) {
	loader := newFakeLoader(VariantMinimal)
	cache := NewCache(loader)

	entry, ok := cache.Get(context.Background(), VariantMinimal)
	assert.False(t, ok)
	assert.Nil(t, entry)
	assert.False(t, cache.Available(context.Background(), VariantMinimal))
}

func TestCacheStyleOnlyForFullVariant(t *testing.T) {
	cache := NewCache(newFakeLoader())

	full, ok := cache.Get(context.Background(), VariantFull)
	require.True(t, ok)
	assert.NotEmpty(t, full.Style)

	balanced, ok := cache.Get(context.Background(), VariantBalanced)
	require.True(t, ok)
	assert.Empty(t, balanced.Style)
}

func TestCacheConcurrentFirstAccessLoadsOnce(t *testing.T) {
	loader := newFakeLoader()
	cache := NewCache(loader)

	var wg sync.WaitGroup
	var hits atomic.Int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := cache.Get(context.Background(), VariantMinimal); ok {
				hits.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(16), hits.Load())
	assert.Equal(t, 1, loader.scriptCalls[VariantMinimal])
}

func TestCacheBootstrapBuilderPopulatesEntry(t *testing.T) {
	cache := NewCache(newFakeLoader(), WithBootstrapBuilder(func(e Entry) string {
		return "<html>" + e.Variant.String() + "</html>"
	}))

	entry, ok := cache.Get(context.Background(), VariantMinimal)
	require.True(t, ok)
	assert.Equal(t, "<html>minimal</html>", entry.Bootstrap)
}

func TestEmbeddedLoaderServesAllVariants(t *testing.T) {
	loader := EmbeddedLoader{}
	for _, v := range Variants() {
		script, err := loader.Script(v)
		require.NoError(t, err)
		assert.Contains(t, script, "initStreamdown")
	}
	style, err := loader.Style(VariantFull)
	require.NoError(t, err)
	assert.NotEmpty(t, style)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("balanced")
	require.NoError(t, err)
	assert.Equal(t, VariantBalanced, v)

	_, err = ParseVariant("enormous")
	assert.Error(t, err)
}
