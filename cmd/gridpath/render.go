package main

import (
	"bufio"
	"io"

	"grid_router/pkg/grid"
)

const (
	ansiPath  = "\x1b[1;32m"
	ansiEnd   = "\x1b[1;31m"
	ansiReset = "\x1b[0m"
)

type renderOptions struct {
	color    bool
	maxWidth int // columns to print, 0 for all
}

// render draws g one row per line, row 0 first.
//
//	.  walkable    #  blocked    ~  walkable with a penalty
//	*  path        S  start      G  goal
func render(out io.Writer, g *grid.Grid, path []grid.Coord, start, goal grid.Coord, opts renderOptions) {
	onPath := make(map[grid.Coord]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	cols := g.Width()
	if opts.maxWidth > 0 && opts.maxWidth < cols {
		cols = opts.maxWidth
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < cols; x++ {
			c := grid.Coord{X: x, Y: y}
			n := g.Node(x, y)
			var ch byte
			switch {
			case c == start:
				ch = 'S'
			case c == goal:
				ch = 'G'
			case onPath[c]:
				ch = '*'
			case !n.Walkable():
				ch = '#'
			case n.MovementPenalty > 0:
				ch = '~'
			default:
				ch = '.'
			}
			if !opts.color || ch == '.' || ch == '#' || ch == '~' {
				w.WriteByte(ch)
				continue
			}
			if ch == '*' {
				w.WriteString(ansiPath)
			} else {
				w.WriteString(ansiEnd)
			}
			w.WriteByte(ch)
			w.WriteString(ansiReset)
		}
		w.WriteByte('\n')
	}
}
