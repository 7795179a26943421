package profile

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade/pkg/logger"
)

// countingDirectory records how many lookups were issued per key.
type countingDirectory struct {
	mu       sync.Mutex
	calls    map[string]int
	failKeys map[string]bool
}

func newCountingDirectory() *countingDirectory {
	return &countingDirectory{calls: make(map[string]int), failKeys: make(map[string]bool)}
}

func (d *countingDirectory) Lookup(ctx context.Context, identityKey string) (Profile, error) {
	d.mu.Lock()
	d.calls[identityKey]++
	d.mu.Unlock()

	if d.failKeys[identityKey] {
		return Profile{}, errors.New("directory unavailable")
	}
	return Profile{DisplayName: "name-" + identityKey, Image: "img-" + identityKey}, nil
}

func (d *countingDirectory) totalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.calls {
		total += n
	}
	return total
}

func newTestEnricher(d Directory) *Enricher {
	cache := NewMemoryCache(time.Hour, 1000, nil)
	return NewEnricher(d, cache, 4, logger.NewNop())
}

func TestResolveDeduplicates(t *testing.T) {
	dir := newCountingDirectory()
	e := newTestEnricher(dir)

	// 50 references to the same creator must produce exactly one call
	keys := make([]string, 50)
	for i := range keys {
		keys[i] = "U1"
	}
	keys = append(keys, "U2", "", "U2")

	got := e.Resolve(context.Background(), keys)

	require.Len(t, got, 2)
	assert.Equal(t, 1, dir.calls["U1"])
	assert.Equal(t, 1, dir.calls["U2"])
	assert.Equal(t, "name-U1", got["U1"].DisplayName)
}

func TestResolveFailureIsolation(t *testing.T) {
	dir := newCountingDirectory()
	dir.failKeys["U2"] = true
	e := newTestEnricher(dir)

	got := e.Resolve(context.Background(), []string{"U1", "U2", "U3"})

	require.Len(t, got, 3)
	assert.Equal(t, "name-U1", got["U1"].DisplayName)
	assert.Equal(t, Profile{}, got["U2"], "failed lookup degrades to empty profile")
	assert.Equal(t, "name-U3", got["U3"].DisplayName)
}

func TestResolveUsesCacheAcrossInvocations(t *testing.T) {
	dir := newCountingDirectory()
	e := newTestEnricher(dir)

	e.Resolve(context.Background(), []string{"U1", "U2"})
	e.Resolve(context.Background(), []string{"U1", "U2"})

	assert.Equal(t, 1, dir.calls["U1"])
	assert.Equal(t, 1, dir.calls["U2"])
}

func TestResolveCachesEmptyResults(t *testing.T) {
	dir := newCountingDirectory()
	dir.failKeys["U1"] = true
	e := newTestEnricher(dir)

	e.Resolve(context.Background(), []string{"U1"})
	e.Resolve(context.Background(), []string{"U1"})

	assert.Equal(t, 1, dir.calls["U1"], "empty result must be cached to suppress repeat lookups")
}

func TestResolveEmptyInput(t *testing.T) {
	dir := newCountingDirectory()
	e := newTestEnricher(dir)

	got := e.Resolve(context.Background(), nil)
	assert.Empty(t, got)
	assert.Equal(t, 0, dir.totalCalls())
}

func TestResolveProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// One outbound call per distinct key regardless of duplication
	properties.Property("one lookup per distinct key", prop.ForAll(
		func(refs []int) bool {
			dir := newCountingDirectory()
			e := newTestEnricher(dir)

			keys := make([]string, len(refs))
			distinct := make(map[string]struct{})
			for i, n := range refs {
				key := "U" + strconv.Itoa(n%5)
				keys[i] = key
				distinct[key] = struct{}{}
			}

			got := e.Resolve(context.Background(), keys)
			if len(got) != len(distinct) {
				return false
			}
			return dir.totalCalls() == len(distinct)
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
