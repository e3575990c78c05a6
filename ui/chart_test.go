package ui

import "testing"

func countNonBlank(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' {
			n++
		}
	}
	return n
}

func TestPlotFlatSeriesIsSingleRow(t *testing.T) {
	lines := Plot([]float64{1, 1, 1, 1}, 1, 1, 0.1)
	if len(lines) != 1 {
		t.Fatalf("expected a single row for a flat series, got %d", len(lines))
	}
}

func TestPlotMonotonicSeriesMarksEveryColumn(t *testing.T) {
	lines := Plot([]float64{0, 1, 2, 3}, 0, 3, 1)
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(lines))
	}
	for _, line := range lines {
		if len(line) != 4 {
			t.Fatalf("expected each row to have 4 columns, got %d", len(line))
		}
	}
	for c := 0; c < 4; c++ {
		marked := false
		for _, line := range lines {
			if line[c] == '*' {
				marked = true
			}
		}
		if !marked {
			t.Fatalf("expected column %d to carry a sample mark, got %q", c, lines)
		}
	}
	// Top row (highest level) should be blank except at the last column.
	top := lines[0]
	if countNonBlank(top) != 1 {
		t.Fatalf("expected exactly one marked column in the top row, got %q", top)
	}
}

func TestPlotEmptyInputReturnsNil(t *testing.T) {
	if lines := Plot(nil, 0, 1, 0.1); lines != nil {
		t.Fatalf("expected nil for empty input, got %v", lines)
	}
}
