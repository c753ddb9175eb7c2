package ledger

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDoesNotMutate(t *testing.T) {
	l := Ledger{"nano1": 10}
	next, err := l.Add(map[string]float64{"nano1": 5, "orin": 7})
	require.NoError(t, err)
	assert.Equal(t, Ledger{"nano1": 10}, l)
	assert.Equal(t, Ledger{"nano1": 15, "orin": 7}, next)
	assert.Equal(t, 0.0, next.Get("nano2"))
}

func TestAddRejectsDecrease(t *testing.T) {
	_, err := Ledger{"a": 10}.Add(map[string]float64{"a": -1})
	assert.Error(t, err)
}

// Chaining two rounds gives the same ledger as one pre-summed increment.
func TestChainedAddsEqualPreSummed(t *testing.T) {
	start := Ledger{"a": 100, "b": 3}
	r1 := map[string]float64{"a": 512, "b": 128, "c": 1024}
	r2 := map[string]float64{"a": 128, "c": 512}

	chained, err := start.Add(r1)
	require.NoError(t, err)
	chained, err = chained.Add(r2)
	require.NoError(t, err)

	summed := map[string]float64{}
	for _, r := range []map[string]float64{r1, r2} {
		for k, v := range r {
			summed[k] += v
		}
	}
	direct, err := start.Add(summed)
	require.NoError(t, err)
	assert.Equal(t, direct, chained)
}

func TestSpreadAndNames(t *testing.T) {
	l := Ledger{"b": 4, "a": 10}
	assert.Equal(t, []string{"a", "b"}, l.Names())
	assert.Equal(t, 10.0, l.Spread([]string{"a", "b", "missing"}))
	assert.Equal(t, 0.0, l.Spread(nil))
	assert.Equal(t, "{a:10, b:4}", l.String())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	seed := Ledger{"a": 1}
	s := NewMemoryStore(seed)
	seed["a"] = 99

	l, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ledger{"a": 1}, l)

	l, err = s.Commit(ctx, map[string]float64{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, Ledger{"a": 3, "b": 3}, l)

	_, err = s.Commit(ctx, map[string]float64{"a": -3})
	assert.Error(t, err)
	l, _ = s.Load(ctx)
	assert.Equal(t, Ledger{"a": 3, "b": 3}, l)
}

func TestNopStore(t *testing.T) {
	s := NewNopStore()
	l, err := s.Commit(context.Background(), map[string]float64{"a": 2})
	require.NoError(t, err)
	assert.Equal(t, Ledger{"a": 2}, l)
	l, _ = s.Load(context.Background())
	assert.Empty(t, l)
}

func TestFileStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledger")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	ctx := context.Background()
	path := filepath.Join(dir, "sub", "ledger.json")

	s := NewFileStore(path, 1)
	l, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, l)

	_, err = s.Commit(ctx, map[string]float64{"nano1": 512, "orin": 0})
	require.NoError(t, err)
	_, err = s.Commit(ctx, map[string]float64{"nano1": 128})
	require.NoError(t, err)

	// a second store over the same path sees the persisted values
	l, err = NewFileStore(path, 0).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ledger{"nano1": 640, "orin": 0}, l)
}

func TestFileStoreCorrupt(t *testing.T) {
	f, err := ioutil.TempFile("", "ledger")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	f.WriteString("{not json")
	f.Close()

	_, err = NewFileStore(f.Name(), 0).Load(context.Background())
	assert.Error(t, err)
}

func TestEtcdValueFormat(t *testing.T) {
	for _, v := range []float64{0, 1, 512.25, 1e12} {
		got, err := parseUsage([]byte(formatUsage(v)))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := parseUsage([]byte("-1"))
	assert.Error(t, err)
	_, err = parseUsage([]byte("abc"))
	assert.Error(t, err)
}

func TestEtcdPrefix(t *testing.T) {
	assert.Equal(t, DefaultEtcdPrefix, newEtcdStore(nil, "", 0).prefix)
	s := newEtcdStore(nil, "/x/ledger", -1)
	assert.Equal(t, "/x/ledger/", s.prefix)
	assert.Equal(t, "/x/ledger/orin", s.key("orin"))
	assert.Equal(t, uint64(0), s.maxRetries)
}
