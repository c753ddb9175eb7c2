package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/nodesched/common"
	cerrors "github.com/twitter/nodesched/common/errors"
	"github.com/twitter/nodesched/generator"
	"github.com/twitter/nodesched/render"
	"github.com/twitter/nodesched/report"
	"github.com/twitter/nodesched/scheduler/bestfit"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
)

// runCmd runs one round over a JSON request file, or over a random batch
// when no file is given.
type runCmd struct {
	use       string
	short     string
	algorithm string
	input     string
	history   string
	seed      int64
	out       outputFlags
}

func newRunCmd(use, short, algorithm string) *runCmd {
	return &runCmd{use: use, short: short, algorithm: algorithm}
}

func (c *runCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   c.use,
		Short: c.short,
	}
	r.Flags().StringVar(&c.algorithm, "algorithm", c.algorithm, "bestfit, knapsack, roundrobin or proportional. If unset, the configured or requested algorithm")
	r.Flags().StringVar(&c.input, "input", "", "JSON request file ('-' for stdin). If unset, a random batch over the demo nodes")
	r.Flags().StringVar(&c.history, "history", "", "Ledger for this round only, e.g. nano1=512,orin=1024. The stored ledger is neither read nor updated")
	r.Flags().Int64Var(&c.seed, "seed", 0, "Seed for the random batch, 0 picks one")
	c.out.register(r)
	return r
}

func (c *runCmd) Run(cl *CLIClient, cmd *cobra.Command, args []string) error {
	req, err := c.request(cmd.InOrStdin())
	if err != nil {
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}

	sched, release, err := cl.scheduler()
	if err != nil {
		return err
	}
	defer release()

	log.Infof("running %s round over %d tasks and %d nodes", orDefault(req.Algorithm, "configured"), len(req.Tasks), len(req.Nodes))
	res, err := sched.RunRound(context.Background(), req)
	if res != nil {
		if outErr := c.out.write(cl.Out, res); outErr != nil {
			log.Errorf("writing result: %v", outErr)
		}
	}
	return roundError(err)
}

func (c *runCmd) request(stdin io.Reader) (domain.Request, error) {
	req := domain.Request{}
	if c.input != "" {
		var rd io.Reader = stdin
		if c.input != "-" {
			f, err := os.Open(c.input)
			if err != nil {
				return req, err
			}
			defer f.Close()
			rd = f
		}
		d := json.NewDecoder(rd)
		d.DisallowUnknownFields()
		if err := d.Decode(&req); err != nil {
			return req, errors.Wrapf(err, "reading request %s", c.input)
		}
	} else {
		seed := c.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		log.Infof("random batch with seed %d", seed)
		req.Tasks = generator.Random(seed, time.Now())
		req.Nodes, _ = generator.DemoCapacityData()
		if c.algorithm == bestfit.AlgorithmName {
			req.Nodes, _ = generator.DemoTimeData()
		}
	}

	if c.algorithm != "" {
		req.Algorithm = c.algorithm
	}
	if c.history != "" {
		h, err := common.ParseFloatMap(c.history)
		if err != nil {
			return req, errors.Wrap(err, "--history")
		}
		req.Ledger = ledger.Ledger(h)
	}
	return req, nil
}

// outputFlags select how a result is shown.
type outputFlags struct {
	svg     string
	json    bool
	noColor bool
	title   string
}

func (o *outputFlags) register(r *cobra.Command) {
	r.Flags().StringVar(&o.svg, "svg", "", "Also draw the assignment to this SVG file")
	r.Flags().BoolVar(&o.json, "json", false, "Print the result as JSON instead of the report")
	r.Flags().BoolVar(&o.noColor, "no_color", false, "Print the report without colors")
	r.Flags().StringVar(&o.title, "title", "", "Report and chart title")
}

func (o *outputFlags) write(w io.Writer, res *domain.Result) error {
	if o.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if err := report.Write(w, res, report.Options{Title: o.title, Color: !o.noColor}); err != nil {
		return err
	}
	if o.svg == "" {
		return nil
	}

	f, err := os.Create(o.svg)
	if err != nil {
		return err
	}
	draw := render.CapacityChart
	if res.Algorithm == bestfit.AlgorithmName {
		draw = render.Timeline
	}
	if err := draw(f, res, o.title); err != nil {
		f.Close()
		return err
	}
	log.Infof("visualization saved to %s", o.svg)
	return f.Close()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
