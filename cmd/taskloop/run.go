package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/taskloop/kernel"
	"github.com/tailored-agentic-units/taskloop/observability"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Plan and execute a new task",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		task := viper.GetString("task")
		if task == "" {
			task = strings.Join(args, " ")
		}
		if strings.TrimSpace(task) == "" {
			return errors.New("a task is required: taskloop run --task \"...\"")
		}
		return execute(cmd, func(ctx context.Context, k *kernel.Kernel) (*kernel.Result, error) {
			if pending, err := k.Pending(ctx); err == nil && len(pending) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d unfinished session(s); latest: %s (%s)\n",
					len(pending), pending[0].ID, preview(pending[0].Task))
			}
			return k.Start(ctx, task)
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume [session-id]",
	Short: "Continue a running session from its last checkpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		latest, _ := cmd.Flags().GetBool("latest")
		if len(args) == 0 && !latest {
			return errors.New("a session id or --latest is required")
		}
		return execute(cmd, func(ctx context.Context, k *kernel.Kernel) (*kernel.Result, error) {
			id := ""
			if len(args) > 0 {
				id = args[0]
			} else {
				pending, err := k.Pending(ctx)
				if err != nil {
					return nil, err
				}
				if len(pending) == 0 {
					return nil, errors.New("no running sessions")
				}
				id = pending[0].ID
			}
			return k.Resume(ctx, id)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, resumeCmd} {
		cmd.Flags().Int("max-turns", 0, "Turn budget for this run (overrides config)")
		cmd.Flags().String("workspace", "", "Working directory for built-in capabilities")
		cmd.Flags().Bool("watch", true, "Reload capabilities when the config file changes")
	}
	runCmd.Flags().String("task", "", "Task to execute")
	runCmd.Flags().Bool("no-plan", false, "Skip the planning phase")
	resumeCmd.Flags().Bool("latest", false, "Resume the most recently updated running session")
}

// bindRunFlags binds the flags shared by run and resume to viper. Binding
// happens per invocation because both commands define the same names.
func bindRunFlags(cmd *cobra.Command) {
	for _, name := range []string{"max-turns", "workspace", "watch", "task", "no-plan"} {
		if cmd.Flags().Lookup(name) != nil {
			mustBind(cmd, name)
		}
	}
}

type runFunc func(ctx context.Context, k *kernel.Kernel) (*kernel.Result, error)

// execute builds a kernel from configuration and runs fn alongside the
// capability reloader. SIGINT and SIGTERM stop the run after the current
// turn; the session stays resumable.
func execute(cmd *cobra.Command, fn runFunc) error {
	bindRunFlags(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n := viper.GetInt("max-turns"); n > 0 {
		cfg.MaxTurns = n
	}
	if ws := viper.GetString("workspace"); ws != "" {
		cfg.Capabilities.Workspace = ws
	}
	if viper.GetBool("no-plan") {
		planning := false
		cfg.Planning = &planning
	}

	logObserver, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return err
	}
	observer := observability.NewMultiObserver(logObserver, console{w: cmd.OutOrStdout()})

	k, err := kernel.New(cfg, kernel.WithObserver(observer))
	if err != nil {
		return err
	}
	defer k.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var rl *reloader
	if path := viper.GetString("config"); path != "" && viper.GetBool("watch") {
		if rl, err = newReloader(path, k, logObserver); err != nil {
			return err
		}
	}

	var result *kernel.Result
	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	defer stopWatch()

	g.Go(func() error {
		defer stopWatch()
		var err error
		result, err = fn(ctx, k)
		return err
	})
	if rl != nil {
		g.Go(func() error { return rl.watch(watchCtx, hup) })
	}

	err = g.Wait()
	printResult(cmd.OutOrStdout(), result)
	if errors.Is(err, context.Canceled) && result != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "interrupted; resume with: taskloop resume %s\n", result.SessionID)
	}
	return err
}
