package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kevinawalsh/alloysat/internal/config"
	"github.com/kevinawalsh/alloysat/internal/logging"
)

func runCmd() *cobra.Command {
	var scope, steps int
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Solve a module's designated run command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			cfg, err := loadConfig(file)
			if err != nil {
				os.Exit(exitUsage)
			}
			ov := scopeOverride{
				Scope:    scope,
				HasScope: cmd.Flags().Changed("scope"),
				Steps:    steps,
				HasSteps: cmd.Flags().Changed("steps"),
			}

			if !watch {
				os.Exit(runFile(context.Background(), file, cfg, ov))
			}

			os.Exit(watchFile(file, cfg, ov))
			return nil
		},
	}
	cmd.Flags().IntVar(&scope, "scope", 0, "Default scope for signatures without an explicit bound")
	cmd.Flags().IntVar(&steps, "steps", 0, "Trace length for temporal commands")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run on every save")
	return cmd
}

// watchFile runs file's command once, then re-runs it on every write until
// interrupted. It returns the last observed exit code.
func watchFile(file string, cfg config.Config, ov scopeOverride) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(file)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := runFile(ctx, file, cfg, ov)
	fmt.Fprintln(os.Stderr, "watching for changes, press Ctrl-C to stop...")

	for {
		select {
		case <-ctx.Done():
			return code
		case ev, ok := <-watcher.Events:
			if !ok {
				return code
			}
			if filepath.Clean(ev.Name) != filepath.Clean(file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			code = runFile(ctx, file, cfg, ov)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return code
			}
			if logging.Log != nil {
				logging.Log.Warn("watch error", "error", werr)
			}
		}
	}
}

func loadConfig(file string) (config.Config, error) {
	cfg, err := config.Load(filepath.Dir(file))
	if err != nil {
		return cfg, err
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return cfg, err
	}
	return cfg, nil
}
