package service

import "math"

const maxPageSize = 100

// Page selects a 1-based page of Size items.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the requested page into range, falling back to defaultSize.
func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = max(defaultSize, 1)
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	// Keep Offset from overflowing.
	if limit := math.MaxInt / size; number > limit {
		number = limit
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
