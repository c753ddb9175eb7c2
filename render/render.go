// Package render draws a round's assignment as an SVG horizontal bar chart,
// one row per node and one segment per placed task.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/twitter/nodesched/scheduler/domain"
)

const (
	width      = 960
	marginLeft = 90
	marginTop  = 50
	rowHeight  = 40
	axisHeight = 60
	ticks      = 5
)

// tab10
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

type segment struct {
	left, size float64
	label      []string
}

type chart struct {
	title  string
	xLabel string
	rows   []string
	segs   [][]segment
	limits []float64 // per row budget, drawn as a dashed marker
	xMax   float64
}

// Timeline draws placements at their Start/End times, for time based results.
func Timeline(w io.Writer, res *domain.Result, title string) error {
	if title == "" {
		title = fmt.Sprintf("Task Scheduling Visualization (%d Nodes)", len(res.Nodes))
	}
	c := &chart{title: title, xLabel: "Time (seconds)"}
	for i := range res.Nodes {
		n := &res.Nodes[i]
		var segs []segment
		for _, t := range n.Schedule {
			if t.Placement == nil {
				continue
			}
			segs = append(segs, segment{left: t.Placement.Start, size: t.Duration(), label: []string{t.ID}})
		}
		c.add(n.Name, segs, n.Uptime)
	}
	return c.write(w)
}

// CapacityChart stacks each node's tasks by cost from zero, for capacity
// based results.
func CapacityChart(w io.Writer, res *domain.Result, title string) error {
	if title == "" {
		title = fmt.Sprintf("Knapsack Task Scheduling Across %d Nodes", len(res.Nodes))
	}
	c := &chart{title: title, xLabel: "Capacity Used"}
	for i := range res.Nodes {
		n := &res.Nodes[i]
		var segs []segment
		pos := 0.0
		for _, t := range n.Schedule {
			segs = append(segs, segment{left: pos, size: t.Cost, label: []string{t.ID, fmt.Sprintf("%g", t.Cost)}})
			pos += t.Cost
		}
		c.add(n.Name, segs, n.EffectiveCapacity())
	}
	return c.write(w)
}

func (c *chart) add(row string, segs []segment, limit float64) {
	c.rows = append(c.rows, row)
	c.segs = append(c.segs, segs)
	c.limits = append(c.limits, limit)
	c.xMax = math.Max(c.xMax, limit)
	for _, s := range segs {
		c.xMax = math.Max(c.xMax, s.left+s.size)
	}
}

func (c *chart) write(w io.Writer) error {
	plotWidth := float64(width - marginLeft - 20)
	height := marginTop + rowHeight*len(c.rows) + axisHeight
	xMax := c.xMax
	if xMax <= 0 {
		xMax = 1
	}
	x := func(v float64) float64 { return marginLeft + v/xMax*plotWidth }
	plotBottom := marginTop + rowHeight*len(c.rows)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif">`+"\n", width, height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="white"/>`+"\n")
	fmt.Fprintf(&b, `<text x="%d" y="28" font-size="18" font-weight="bold" text-anchor="middle">%s</text>`+"\n", width/2, escape(c.title))

	for i := 0; i <= ticks; i++ {
		v := xMax * float64(i) / ticks
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#ccc" stroke-dasharray="4,4"/>`+"\n", x(v), marginTop, x(v), plotBottom)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="11" text-anchor="middle">%s</text>`+"\n", x(v), plotBottom+16, escape(fmt.Sprintf("%.4g", v)))
	}
	fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="13" text-anchor="middle">%s</text>`+"\n", x(xMax/2), plotBottom+40, escape(c.xLabel))

	for i, row := range c.rows {
		y := marginTop + rowHeight*i
		mid := float64(y) + rowHeight/2.0
		color := palette[i%len(palette)]
		fmt.Fprintf(&b, `<g class="node" id="%s">`+"\n", escape(row))
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-size="12" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n", marginLeft-8, mid, escape(row))
		for _, s := range c.segs[i] {
			left, right := x(s.left), x(s.left+s.size)
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="black"/>`+"\n",
				left, float64(y)+rowHeight*0.1, right-left, rowHeight*0.8, color)
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="9" font-weight="bold" fill="white" text-anchor="middle" dominant-baseline="middle">`, (left+right)/2, mid)
			for j, line := range s.label {
				fmt.Fprintf(&b, `<tspan x="%.1f" dy="%s">%s</tspan>`, (left+right)/2, dy(j, len(s.label)), escape(line))
			}
			b.WriteString("</text>\n")
		}
		if c.limits[i] > 0 {
			fmt.Fprintf(&b, `<line class="limit" x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="black" stroke-dasharray="2,2"/>`+"\n",
				x(c.limits[i]), y+2, x(c.limits[i]), y+rowHeight-2)
		}
		b.WriteString("</g>\n")
	}
	b.WriteString("</svg>\n")

	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "writing svg")
}

// dy offsets multi line labels so they center on the bar.
func dy(line, lines int) string {
	if line == 0 {
		return fmt.Sprintf("%.1fem", -0.6*float64(lines-1))
	}
	return "1.2em"
}

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
