// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/Verdant/pkg/logging"
	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/engine"
	"github.com/AleutianAI/Verdant/services/assessor/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// initTracer wires the OTLP exporter when a collector endpoint is set.
// Tracing is optional in serve mode; without an endpoint the global
// tracer provider stays a no-op.
func initTracer(ctx context.Context) (func(context.Context), error) {
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("verdant-assessor")),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(shutdownCtx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "assessor",
		LogDir:  os.Getenv("VERDANT_LOG_DIR"),
	})
	defer logger.Close()

	cfg, err := config.Load(logger.Slog())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	shutdown, err := initTracer(cmd.Context())
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer shutdown(context.Background())

	eng := engine.New(cfg, logger.Slog())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("verdant-assessor"))
	routes.SetupRoutes(router, eng, cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("assessor listening", "addr", addr, "mode", string(cfg.Mode))
	return router.Run(addr)
}
