package viz

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a Braille dot canvas of Width×Height cells, i.e. 2·Width by
// 4·Height dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Bounds is an axis-aligned viewport in model coordinates.
type Bounds struct {
	Min, Max r2.Vec
}

// Fit returns the bounding box of all point sets, padded by a fraction of
// its size and never degenerate.
func Fit(pad float64, sets ...[]r2.Vec) Bounds {
	var b Bounds
	first := true
	for _, pts := range sets {
		for _, p := range pts {
			if first {
				b.Min, b.Max = p, p
				first = false
				continue
			}
			b.Min = r2.Vec{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y)}
			b.Max = r2.Vec{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y)}
		}
	}

	size := r2.Sub(b.Max, b.Min)
	margin := r2.Vec{X: pad * size.X, Y: pad * size.Y}
	if size.X == 0 {
		margin.X = 0.5
	}
	if size.Y == 0 {
		margin.Y = 0.5
	}
	return Bounds{Min: r2.Sub(b.Min, margin), Max: r2.Add(b.Max, margin)}
}

// Plot sets the dot nearest to p within the viewport; y grows upward.
func (c *Canvas) Plot(b Bounds, p r2.Vec) {
	w, h := float64(2*c.Width-1), float64(4*c.Height-1)
	x := (p.X - b.Min.X) / (b.Max.X - b.Min.X) * w
	y := (b.Max.Y - p.Y) / (b.Max.Y - b.Min.Y) * h
	if !(x >= 0 && x <= w && y >= 0 && y <= h) {
		return
	}
	c.Set(int(x+0.5), int(y+0.5))
}
