// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdant_provider_attempts_total",
		Help: "Provider call attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	gatewayFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdant_gateway_fallbacks_total",
		Help: "Calls that were served by a provider other than the first in the chain.",
	})

	providerCallSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verdant_provider_call_seconds",
		Help:    "Wall-clock duration of individual provider round-trips.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"provider"})
)

const (
	outcomeSuccess   = "success"
	outcomeTransient = "transient_error"
	outcomeTerminal  = "terminal_error"
)
