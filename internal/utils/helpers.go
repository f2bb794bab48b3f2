package utils

import (
	"fmt"
	"strings"
)

// ProgressBarWidth is the number of characters in a rendered progress bar.
const ProgressBarWidth = 30

// Dedupe returns the distinct items of slice in first-seen order.
func Dedupe[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	out := make([]T, 0, len(slice))
	for _, item := range slice {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Chunk splits slice into consecutive batches of at most size items.
// The batches share the backing array of slice.
func Chunk[T any](slice []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	batches := make([][]T, 0, (len(slice)+size-1)/size)
	for start := 0; start < len(slice); start += size {
		end := min(start+size, len(slice))
		batches = append(batches, slice[start:end:end])
	}
	return batches
}

// ProgressBar renders "[=====-----] 50.0% (10/20)" with a bar of width characters.
func ProgressBar(current, total, width int) string {
	if total <= 0 {
		return fmt.Sprintf("[%s] 100.0%% (%d/%d)", strings.Repeat("=", width), current, total)
	}
	current = max(0, min(current, total))

	filled := width * current / total
	percent := float64(current) / float64(total) * 100
	bar := strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("[%s] %.1f%% (%d/%d)", bar, percent, current, total)
}
