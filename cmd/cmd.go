package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/urfave/cli/v2"

	"github.com/othellosim/desim/config"
)

const (
	ServiceName      = "othellosim-desim"
	ServiceNamespace = "othellosim"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

// drainPollInterval is how often the `run` command checks whether every
// configured simulation run has finished before tearing the fx app down.
const drainPollInterval = 100 * time.Millisecond

func Run() error {
	app := &cli.App{
		Name:  ServiceName,
		Usage: "Discrete-event map/reduce network simulator",
		Commands: []*cli.Command{
			runCmd(),
			serveCmd(),
		},
	}

	return app.Run(os.Args)
}

func configFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config-file", Usage: "Path to a YAML/TOML/JSON config file"},
	}
	config.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config-file" {
			return
		}
		flags = append(flags, &cli.StringFlag{Name: f.Name, Usage: f.Usage, Hidden: true})
	})
	return flags
}

// loadConfigFromCLI bridges urfave/cli's parsed flags onto the pflag.FlagSet
// config.Load expects, setting only the flags the user actually passed so
// viper's file/env layers beneath them aren't shadowed by zero values.
func loadConfigFromCLI(c *cli.Context) (*config.Config, error) {
	pf := config.Flags()
	pf.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config-file" || !c.IsSet(f.Name) {
			return
		}
		_ = pf.Set(f.Name, c.String(f.Name))
	})
	return config.Load(c.String("config-file"), pf)
}

// runCmd loads config, builds the fx app, runs every configured simulation
// run to completion (a batch job, not a daemon), and tears the app down —
// spec's "`run` command ... runs it to completion" (SPEC_FULL.md CLI
// section).
func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the configured simulation batch to completion and exit",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigFromCLI(c)
			if err != nil {
				return err
			}
			app, store := newAppWithStore(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			ticker := time.NewTicker(drainPollInterval)
			defer ticker.Stop()
			for !store.AllDrained() {
				select {
				case <-c.Context.Done():
					return app.Stop(context.Background())
				case <-ticker.C:
				}
			}

			slog.Info("All runs drained, shutting down.")
			return app.Stop(context.Background())
		},
	}
}

// serveCmd keeps the control-plane API up indefinitely, for interactive
// result inspection after the configured runs drain (spec's "`serve`
// command that keeps the control-plane API up after the configured `runs`
// drain" — SPEC_FULL.md CLI section).
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the simulation batch and keep the control-plane API up",
		Flags:   configFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigFromCLI(c)
			if err != nil {
				return err
			}
			app := NewApp(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("Shutting down...")
			return app.Stop(context.Background())
		},
	}
}
