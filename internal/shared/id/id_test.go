package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 26)
	assert.True(t, IsValid(a.String()))
}

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"compile", NewCompileID().String(), CompilePrefix},
		{"stream", NewStreamID().String(), StreamPrefix},
		{"request", NewRequestID().String(), RequestPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix+"_"))
			prefix, _, err := Split(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, prefix)
			assert.False(t, IsValid(tt.id))
		})
	}
}

func TestSplitRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "cmp", "_01ARZ3NDEKTSV4RRFFQ69G5FAV", "cmp_not-a-ulid"} {
		_, _, err := Split(s)
		assert.ErrorIs(t, err, ErrMalformed, s)
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)

	for _, s := range []string{New(), NewCompileID().String()} {
		ts, err := Timestamp(s)
		require.NoError(t, err)
		assert.True(t, ts.After(before), s)
		assert.True(t, ts.Before(time.Now().Add(time.Second)), s)
	}

	_, err := Timestamp("garbage")
	assert.Error(t, err)
}

func TestMonotonicOrdering(t *testing.T) {
	g := NewGenerator()
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.GenerateString()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestConcurrentGeneration(t *testing.T) {
	const workers, perWorker = 8, 100
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s := NewStreamID().String()
				mu.Lock()
				seen[s] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestDefaultGenerator(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func BenchmarkGenerateWithPrefix(b *testing.B) {
	g := NewGenerator()
	for i := 0; i < b.N; i++ {
		_ = g.GenerateWithPrefix(CompilePrefix)
	}
}
