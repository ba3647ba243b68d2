package main

import (
	"context"
	"errors"

	"engcalc/internal/calculator"
	"engcalc/internal/observability"
)

// initTelemetry starts the OTLP exporters for traces, metrics and logs and
// returns one shutdown for all of them.
func initTelemetry(ctx context.Context) (func(context.Context) error, error) {
	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		return nil, err
	}

	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		return nil, errors.Join(err, traceShutdown(ctx))
	}

	logShutdown, err := observability.InitLogging(ctx)
	if err != nil {
		return nil, errors.Join(err, metricShutdown(ctx), traceShutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(logShutdown(ctx), metricShutdown(ctx), traceShutdown(ctx))
	}, nil
}

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
