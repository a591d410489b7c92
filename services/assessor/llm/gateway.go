// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/Verdant/services/assessor/config"
)

var tracer = otel.Tracer("verdant/assessor/llm")

// CallResult is the outcome of one gateway call.
type CallResult struct {
	Success      bool
	Content      string
	ProviderID   string
	Duration     time.Duration
	FallbackUsed bool
	Err          error
}

// Gateway dispatches one evaluation call across an ordered provider
// fallback chain.
//
// # Description
//
// The chain is fixed at construction from the process configuration and
// never mutated afterward. Each Call attempts providers in declared
// order: at most one network round-trip per provider, no provider
// retried twice within a call. Transient failures (429, 5xx, timeouts,
// connection errors) advance to the next provider; terminal failures
// (400/401/403) abort the chain immediately, since auth and request
// shape problems will not be fixed by switching backend.
//
// # Thread Safety
//
// Gateway is immutable after construction and safe for concurrent use.
type Gateway struct {
	providers   []ProviderClient
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewGateway builds the fallback chain from the provider configuration.
//
// # Inputs
//
//   - cfg: Immutable process configuration. The provider order in
//     cfg.Providers is the fallback order.
//   - logger: Structured logger; must not be nil.
//
// # Outputs
//
//   - *Gateway: Ready-to-use gateway. An empty chain is allowed; Call
//     then fails fast with ErrNoProviders.
func NewGateway(cfg *config.Config, logger *slog.Logger) *Gateway {
	providers := make([]ProviderClient, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		switch pc.Kind {
		case config.ProviderAnthropic:
			providers = append(providers, NewAnthropicClient(pc))
		case config.ProviderOpenAI:
			providers = append(providers, NewOpenAIClient(pc))
		case config.ProviderOllama:
			providers = append(providers, NewOllamaClient(pc))
		}
	}
	return &Gateway{
		providers:   providers,
		callTimeout: cfg.CallTimeout,
		logger:      logger,
	}
}

// NewGatewayWithProviders builds a gateway over pre-constructed clients.
// Used by tests and anywhere the chain is assembled manually.
func NewGatewayWithProviders(providers []ProviderClient, callTimeout time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{providers: providers, callTimeout: callTimeout, logger: logger}
}

// HasProviders reports whether the chain is non-empty.
func (g *Gateway) HasProviders() bool { return len(g.providers) > 0 }

// Call runs one evaluation prompt through the fallback chain.
//
// # Description
//
// Terminates on the first success or when the chain is exhausted. The
// returned CallResult always reports which provider ultimately served
// the request and whether a fallback occurred, for observability.
//
// # Inputs
//
//   - ctx: Caller context. Each provider attempt additionally carries
//     its own timeout so a hung backend cannot stall the chain.
//   - req: The prompt and generation parameters.
//
// # Outputs
//
//   - CallResult: Success=false carries the classified error in Err.
func (g *Gateway) Call(ctx context.Context, req CallRequest) CallResult {
	ctx, span := tracer.Start(ctx, "Gateway.Call")
	defer span.End()

	start := time.Now()

	if len(g.providers) == 0 {
		return CallResult{Success: false, Duration: time.Since(start), Err: ErrNoProviders}
	}

	var lastErr error
	for i, provider := range g.providers {
		attemptStart := time.Now()

		attemptCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		content, err := provider.Complete(attemptCtx, req)
		cancel()

		attemptDuration := time.Since(attemptStart)
		providerCallSeconds.WithLabelValues(provider.ID()).Observe(attemptDuration.Seconds())

		if err == nil {
			providerAttempts.WithLabelValues(provider.ID(), outcomeSuccess).Inc()
			if i > 0 {
				gatewayFallbacks.Inc()
				g.logger.Warn("provider fallback used",
					"provider", provider.ID(),
					"attempts", i+1,
				)
			}
			span.SetAttributes(
				attribute.String("llm.provider", provider.ID()),
				attribute.Bool("llm.fallback_used", i > 0),
			)
			return CallResult{
				Success:      true,
				Content:      content,
				ProviderID:   provider.ID(),
				Duration:     time.Since(start),
				FallbackUsed: i > 0,
			}
		}

		lastErr = err
		if !shouldFallback(err) {
			providerAttempts.WithLabelValues(provider.ID(), outcomeTerminal).Inc()
			g.logger.Error("terminal provider error, aborting chain",
				"provider", provider.ID(),
				"error", err.Error(),
			)
			return CallResult{
				Success:    false,
				ProviderID: provider.ID(),
				Duration:   time.Since(start),
				Err:        fmt.Errorf("%w: %w", ErrTerminalProvider, err),
			}
		}

		providerAttempts.WithLabelValues(provider.ID(), outcomeTransient).Inc()
		g.logger.Warn("provider attempt failed, trying next",
			"provider", provider.ID(),
			"attempt", i+1,
			"chain_length", len(g.providers),
			"error", err.Error(),
		)
	}

	return CallResult{
		Success:      false,
		Duration:     time.Since(start),
		FallbackUsed: len(g.providers) > 1,
		Err:          fmt.Errorf("%w: last error: %w", ErrAllProvidersFailed, lastErr),
	}
}
