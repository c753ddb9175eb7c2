// Package report prints a round's assignment as a per node console summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ttacon/chalk"

	"github.com/twitter/nodesched/scheduler/bestfit"
	"github.com/twitter/nodesched/scheduler/domain"
)

const rule = "======================================================================"

var (
	title   = chalk.Cyan.NewStyle().WithTextStyle(chalk.Bold).Style
	node    = chalk.Green.NewStyle().WithTextStyle(chalk.Bold).Style
	warning = chalk.Red.NewStyle().WithTextStyle(chalk.Bold).Style
)

// Options control the console output. Color adds terminal escape codes.
type Options struct {
	Title string
	Color bool
}

// Write prints one block per node, in result order, then the unscheduled
// tasks. Time based results report seconds used of uptime, capacity based
// ones report cost used of capacity.
func Write(w io.Writer, res *domain.Result, opts Options) error {
	style := func(f func(string) string, s string) string {
		if opts.Color {
			return f(s)
		}
		return s
	}
	heading := opts.Title
	if heading == "" {
		heading = strings.ToUpper(res.Algorithm) + " SCHEDULING RESULTS"
	}

	p := &printer{w: w}
	p.printf("%s\n%s\n%s\n", rule, style(title, heading), rule)
	if res.RoundID != "" {
		p.printf("Round: %s\n", res.RoundID)
	}
	for i := range res.Nodes {
		n := &res.Nodes[i]
		label, used, total := "Capacity", n.Used(), n.EffectiveCapacity()
		if res.Algorithm == bestfit.AlgorithmName {
			label, used, total = "Time", n.TimeUsed(), n.Uptime
		}
		value := 0.0
		for _, t := range n.Schedule {
			value += t.Value
		}
		p.printf("%s: %v\n", style(node, n.Name), ids(n.Schedule))
		p.printf("  ├─ Tasks: %d\n", len(n.Schedule))
		p.printf("  ├─ %s: %g/%g (%.1f%%)\n", label, used, total, pct(used, total))
		p.printf("  ├─ Total Value: %.2f\n", value)
		p.printf("  └─ Historical Runtime: %g units\n\n", res.Ledger.Get(n.Name))
	}

	unscheduled := fmt.Sprintf("Unscheduled: %v (%d tasks)", ids(res.Unscheduled), len(res.Unscheduled))
	if len(res.Unscheduled) > 0 {
		unscheduled = style(warning, unscheduled)
	}
	p.printf("%s\n%s\n", unscheduled, rule)
	return p.err
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func pct(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}

// printer keeps the first write error so Write can check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
