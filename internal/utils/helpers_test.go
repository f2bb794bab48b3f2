package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a.json", "b.json"}, Dedupe([]string{"a.json", "b.json", "a.json"}))
	assert.Empty(t, Dedupe([]int(nil)))
}

func TestChunk(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	batches := Chunk(items, 20)
	if assert.Len(t, batches, 3) {
		assert.Len(t, batches[0], 20)
		assert.Len(t, batches[1], 20)
		assert.Equal(t, []int{40, 41, 42, 43, 44}, batches[2])
	}

	// appending to a batch must not overwrite the next one
	batches[0] = append(batches[0], -1)
	assert.Equal(t, 20, batches[1][0])

	assert.Len(t, Chunk(items[:3], 0), 3)
	assert.Empty(t, Chunk([]int{}, 5))
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           string
	}{
		{"start", 0, 20, "[----------] 0.0% (0/20)"},
		{"half", 10, 20, "[=====-----] 50.0% (10/20)"},
		{"done", 45, 45, "[==========] 100.0% (45/45)"},
		{"overflow", 60, 45, "[==========] 100.0% (45/45)"},
		{"empty", 0, 0, "[==========] 100.0% (0/0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressBar(tt.current, tt.total, 10))
		})
	}
}
