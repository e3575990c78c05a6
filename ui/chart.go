package ui

import (
	"math"
	"strings"
)

// glyphThrough draws the vertical run between two consecutive sample
// levels; '*' marks each sample's own level. Recovered from
// original_source/utils.py's array_to_plot, reimplemented against a
// general numeric series rather than transliterated.
const glyphThrough = '|'

// Plot renders values as a multi-row ascii sparkline, scaled so min
// maps to the bottom row and max to the top, with rows spaced by step.
// Returns one string per row, top first. Used by the site detail page
// to chart recent response-time samples.
func Plot(values []float64, min, max, step float64) []string {
	if len(values) == 0 || step <= 0 {
		return nil
	}
	rows := int(math.Ceil((max-min)/step)) + 1
	if rows < 1 {
		rows = 1
	}

	level := func(v float64) int {
		l := int(math.Round((v - min) / step))
		if l < 0 {
			l = 0
		}
		if l > rows-1 {
			l = rows - 1
		}
		return l
	}

	grid := make([][]byte, rows)
	for r := range grid {
		grid[r] = make([]byte, len(values))
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	prev := level(values[0])
	grid[rows-1-prev][0] = '*'
	for i := 1; i < len(values); i++ {
		cur := level(values[i])
		lo, hi := prev, cur
		if lo > hi {
			lo, hi = hi, lo
		}
		for l := lo; l <= hi; l++ {
			grid[rows-1-l][i] = byte(glyphThrough)
		}
		grid[rows-1-cur][i] = '*'
		prev = cur
	}

	lines := make([]string, rows)
	for r := range grid {
		var b strings.Builder
		b.Write(grid[r])
		lines[r] = b.String()
	}
	return lines
}
