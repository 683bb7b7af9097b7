package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	"rustdex/internal/trace"
)

// setupTracing builds the tracer from --trace, --trace-format and the
// effective trace level. A trace output with level off means "phase".
func setupTracing(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (trace.Tracer, error) {
	traceOutput, err := cmd.Flags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	formatStr, err := cmd.Flags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	level := cfg.Level()
	if level == trace.LevelOff && traceOutput == "" {
		return trace.Nop, nil
	}
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tcfg := trace.Config{
		Level:      level,
		Format:     format,
		OutputPath: traceOutput,
	}
	// без --trace события уходят в slog
	if traceOutput == "" {
		return trace.NewSlogTracer(log, level), nil
	}
	if log.Enabled(cmd.Context(), slog.LevelDebug) {
		tcfg.Logger = log
	}

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	return tracer, nil
}
