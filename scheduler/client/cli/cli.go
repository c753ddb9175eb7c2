package cli

import (
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cerrors "github.com/twitter/nodesched/common/errors"
	"github.com/twitter/nodesched/common/log/hooks"
	"github.com/twitter/nodesched/scheduler/client"
	"github.com/twitter/nodesched/scheduler/config"
	"github.com/twitter/nodesched/scheduler/server"
)

var addHookOnce sync.Once

// CLIClient holds the flags shared by every command.
type CLIClient struct {
	RootCmd   *cobra.Command
	Addr      string
	Config    string
	LogLevel  string
	LogCaller bool
	Out       io.Writer

	cfg *config.ServiceConfig
}

// Cmd is one subcommand.
type Cmd interface {
	RegisterFlags() *cobra.Command
	Run(cl *CLIClient, cmd *cobra.Command, args []string) error
}

func NewCLIClient() *CLIClient {
	c := &CLIClient{Out: os.Stdout}
	c.RootCmd = &cobra.Command{
		Use:               "nodesched",
		Short:             "nodesched assigns tasks to compute nodes",
		PersistentPreRunE: c.Init,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	c.RootCmd.PersistentFlags().StringVar(&c.Addr, "addr", "", "nodesched api server address. If unset, rounds run in this process")
	c.RootCmd.PersistentFlags().StringVar(&c.Config, "config", "default", "Named configuration or literal JSON, see scheduler/config")
	c.RootCmd.PersistentFlags().StringVar(&c.LogLevel, "log_level", "info", "Log everything at this level and above (error|info|debug)")
	c.RootCmd.PersistentFlags().BoolVar(&c.LogCaller, "log_caller", false, "Add file:line to log entries")

	c.addCmd(newRunCmd("run", "Run one scheduling round", ""))
	c.addCmd(newRunCmd("knapsack", "Run one round filling each node with the knapsack selector", "knapsack"))
	c.addCmd(&demoCmd{})
	c.addCmd(&ledgerCmd{})
	c.addCmd(&algorithmsCmd{})
	c.addCmd(&serveCmd{})
	return c
}

func (c *CLIClient) Exec() error {
	return c.RootCmd.Execute()
}

// Init can only be called from a cobra command run or hook.
func (c *CLIClient) Init(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}
	log.SetLevel(level)
	if c.LogCaller {
		addHookOnce.Do(func() { log.AddHook(hooks.NewContextHook()) })
	}

	c.cfg, err = config.GetServiceConfig(c.Config)
	if err != nil {
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}
	log.Debugf("using config %s: %s", c.Config, c.cfg)
	return nil
}

// scheduler returns the remote client when --addr is set, else an in
// process scheduler over the configured store. The release func is never nil.
func (c *CLIClient) scheduler() (server.Scheduler, func(), error) {
	if c.Addr != "" {
		return client.NewClient(c.Addr, nil), func() {}, nil
	}
	store, closer, err := c.cfg.Ledger.CreateStore()
	if err != nil {
		return nil, func() {}, cerrors.Wrap(err, cerrors.LedgerStoreExitCode, "opening ledger store")
	}
	release := func() {
		if err := closer(); err != nil {
			log.Errorf("closing ledger store: %v", err)
		}
	}
	s, err := server.NewScheduler(c.cfg.Scheduler.CreateSchedulerConfig(), store, nil)
	if err != nil {
		release()
		return nil, func() {}, cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}
	return s, release, nil
}

func (c *CLIClient) addCmd(cmd Cmd) {
	cobraCmd := cmd.RegisterFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.Run(c, innerCmd, args)
	}
	c.RootCmd.AddCommand(cobraCmd)
}
