package pmap

import (
	"sync/atomic"
	"testing"
)

func TestEachCoversAllIndices(t *testing.T) {
	n := 237
	seen := make([]int32, n)
	Each(n, Options{Processes: 8, ChunkRatio: 0.1}, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestEachSingleProcessOrder(t *testing.T) {
	n := 20
	var order []int
	Each(n, Options{SingleProcess: true}, func(i int) {
		order = append(order, i)
	})
	if len(order) != n {
		t.Fatalf("got %d calls, want %d", len(order), n)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("single-process order not ascending: order[%d]=%d", i, v)
		}
	}
}

func TestChunkSizeSmallInputUsesSmallerRatio(t *testing.T) {
	if got := ChunkSize(100, Options{ChunkRatio: 0.1}); got != 5 {
		t.Errorf("ChunkSize(100, 0.1 w/ <1500 override) = %d, want 5", got)
	}
}
