package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yashubustudio/advisor/advisor"
	"yashubustudio/advisor/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "advisor-cli: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	settings   *viper.Viper
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{settings: viper.New()}
	root := &cobra.Command{
		Use:   "advisor-cli",
		Short: "Recommend responses to consumer complaints",
		Long: `advisor-cli reads complaint narratives, extracts sentiment features,
classifies the product and estimates for every company response type the
probability that the consumer disputes it. The recommended response is the
one least likely to escalate.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if a.settings.GetBool("debug") {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("artifacts-dir", "", "Directory holding the trained artifacts (overrides artifacts.dir)")
	flags.String("ort-dll", "", "Path to the ONNX Runtime shared library (overrides runtime.ortDll)")
	flags.Bool("chart", false, "Write the escalation probability chart (overrides render.enabled)")

	bind := map[string]string{
		"debug":          "debug",
		"artifacts.dir":  "artifacts-dir",
		"runtime.ortDll": "ort-dll",
		"render.enabled": "chart",
	}
	for key, name := range bind {
		if err := a.settings.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		newPredictCmd(a),
		newBatchCmd(a),
		newFeaturesCmd(a),
		newFetchCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) loadConfig() (advisor.Config, error) {
	cfg, err := advisor.LoadConfigFrom(a.settings, a.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openService loads the artifacts and wires the chart renderer when enabled.
func (a *app) openService(cfg advisor.Config) (*advisor.Service, error) {
	start := time.Now()
	svc, err := advisor.NewServiceFromConfig(cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init service: %w", err)
	}
	if cfg.Render.Enabled {
		svc.SetRenderer(render.NewChart(cfg.Render))
	}
	a.logger.Debug("service ready", "artifacts", cfg.Artifacts.Dir, "elapsed", time.Since(start))
	return svc, nil
}
