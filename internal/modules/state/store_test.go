package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n   int
	log []int
}

type add int

func reduceCounter(s counter, a add) counter {
	log := append(append([]int(nil), s.log...), int(a))
	return counter{n: s.n + int(a), log: log}
}

func TestDispatchAppliesReducer(t *testing.T) {
	s := New(counter{}, reduceCounter)

	next := s.Dispatch(2)
	assert.Equal(t, 2, next.n)
	next = s.Dispatch(3)
	assert.Equal(t, 5, next.n)
	assert.Equal(t, next, s.State())
}

func TestPublishedSnapshotIsNotMutated(t *testing.T) {
	s := New(counter{}, reduceCounter)
	first := s.Dispatch(1)
	s.Dispatch(1)

	assert.Equal(t, []int{1}, first.log)
}

func TestEffectSeesPrevAndNext(t *testing.T) {
	var seen [][2]int
	s := New(counter{}, reduceCounter, WithEffect(func(prev, next counter, a add) {
		seen = append(seen, [2]int{prev.n, next.n})
	}))

	s.Dispatch(1)
	s.Dispatch(4)

	assert.Equal(t, [][2]int{{0, 1}, {1, 5}}, seen)
}

func TestSubscribeAndCancel(t *testing.T) {
	s := New(counter{}, reduceCounter)
	var got []int
	cancel := s.Subscribe(func(c counter) { got = append(got, c.n) })

	s.Dispatch(1)
	cancel()
	s.Dispatch(1)

	assert.Equal(t, []int{1}, got)
}

func TestConcurrentDispatchIsSerialized(t *testing.T) {
	s := New(counter{}, reduceCounter)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(1)
		}()
	}
	wg.Wait()

	final := s.State()
	require.Equal(t, 50, final.n)
	assert.Len(t, final.log, 50)
}
