package dynamo

import (
	"sync/atomic"
	"testing"
)

func TestParallelForCoversRange(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		workers  int
		minChunk int
	}{
		{"empty", 0, 4, 1},
		{"single inline", 5, 1, 1},
		{"below min chunk", 8, 4, 16},
		{"even split", 100, 4, 1},
		{"uneven split", 101, 3, 10},
		{"more workers than items", 3, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			maxChunk := int32(-1)
			ParallelFor(tt.n, tt.workers, tt.minChunk, func(chunk, start, end int) {
				for {
					cur := atomic.LoadInt32(&maxChunk)
					if int32(chunk) <= cur || atomic.CompareAndSwapInt32(&maxChunk, cur, int32(chunk)) {
						break
					}
				}
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})

			for i, h := range hits {
				if h != 1 {
					t.Errorf("index %d visited %d times", i, h)
				}
			}
			if tt.n > 0 && int(maxChunk) >= Chunks(tt.n, tt.workers, tt.minChunk) {
				t.Errorf("chunk index %d exceeds Chunks()=%d", maxChunk, Chunks(tt.n, tt.workers, tt.minChunk))
			}
		})
	}
}
