package analysis

import (
	"strings"
)

// PatternToASCII plots (xs[i], ys[i]) into a width x height grid of runes.
// Rows follow image coordinates, so y grows downward as on the canvas.
func PatternToASCII(xs, ys []float64, width, height int) string {
	n := min(len(xs), len(ys))
	if n == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i := 0; i < n; i++ {
		col := int((xs[i] - minX) / rangeX * float64(width-1))
		row := int((ys[i] - minY) / rangeY * float64(height-1))
		canvas[row][col] = '•'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
