// Package cli implements the contractdoc command-line interface: rendering,
// serving and checking against the documentation held by a docs.Registry.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/docs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by the subcommands of one root command.
type app struct {
	reg        *docs.Registry
	configFile string
	v          *viper.Viper
	cfg        Config
	log        *slog.Logger
}

// NewRootCmd creates the "contractdoc" command serving the documentation in
// reg.
func NewRootCmd(reg *docs.Registry) *cobra.Command {
	a := &app{reg: reg}

	root := &cobra.Command{
		Use:   "contractdoc",
		Short: "Render and serve contract documentation",
		Long: `contractdoc renders the documentation of published contracts as Markdown,
JSON, YAML or JSON Schema, serves it over HTTP, and checks documents against
contracts built from examples.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./.contractdoc.yaml)")

	root.AddCommand(a.newRenderCmd())
	root.AddCommand(a.newServeCmd())
	root.AddCommand(a.newCheckCmd())
	return root
}

// Execute runs the root command for reg and exits non-zero on failure.
func Execute(reg *docs.Registry) {
	if err := NewRootCmd(reg).Execute(); err != nil {
		os.Exit(1)
	}
}

// setup applies the environment configuration of the contracts package and
// then the config file, which wins where both say something.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	envCfg, err := contracts.ConfigFromEnv()
	if err != nil {
		return err
	}
	if err := contracts.Configure(envCfg); err != nil {
		return err
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(envCfg.LogLevel))
	a.log = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.v = newViper(a.configFile)
	cfg, err := loadConfig(a.v, cmd.Flags(), a.configFile != "")
	if err != nil {
		return err
	}
	a.apply(cfg)
	return nil
}

func (a *app) apply(cfg Config) {
	a.cfg = cfg
	if cfg.InspectionDepth != nil {
		contracts.SetErrorMessageInspectionDepth(*cfg.InspectionDepth)
	}
}

// modules returns the requested modules, or all of them when names is empty.
func (a *app) modules(names []string) ([]docs.Module, error) {
	if len(names) == 0 {
		return a.reg.Snapshot(), nil
	}
	out := make([]docs.Module, 0, len(names))
	for _, n := range names {
		if n == docs.DefaultModulePath {
			n = ""
		}
		m, ok := a.reg.Module(n)
		if !ok {
			return nil, fmt.Errorf("no module named %q", n)
		}
		out = append(out, m)
	}
	return out, nil
}
