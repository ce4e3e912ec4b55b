package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecoscan/internal/application/analysis"
	"github.com/bryanwahyu/ecoscan/internal/config"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/provider"
	"github.com/bryanwahyu/ecoscan/internal/infra/imaging"
)

type analyzeOptions struct {
	ConfigPath     string
	ImagePath      string
	FailOnFallback bool
}

var errFellBack = errors.New("analysis fell back")

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze one image in-process and print the result JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = root.configPath
			opts.ImagePath = args[0]
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FailOnFallback, "fail-on-fallback", false, "Exit non-zero when the placeholder result is returned")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.AI.Timeout)
	defer cancelTimeout()

	gen, err := provider.New(ctx, cfg.AI)
	if err != nil {
		return err
	}
	engine := &analysis.Engine{
		Generator:     gen,
		Normalizer:    imaging.NewNormalizer(logger),
		MaxImageBytes: cfg.AI.MaxImageBytes,
		Logger:        logger,
	}

	out := engine.Analyze(ctx, opts.ImagePath)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.Result); err != nil {
		return err
	}
	if out.Fallback() && opts.FailOnFallback {
		return fmt.Errorf("%w: %v", errFellBack, out.Cause)
	}
	return nil
}
