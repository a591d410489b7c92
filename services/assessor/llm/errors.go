// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNoProviders means the chain is empty: nothing was configured.
var ErrNoProviders = errors.New("no providers configured")

// ErrAllProvidersFailed means every provider in the chain was attempted
// and none succeeded.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ErrTerminalProvider marks a failure that switching providers cannot
// fix (auth or malformed request); the chain aborts immediately.
var ErrTerminalProvider = errors.New("terminal provider error")

// ProviderError wraps a single backend failure with enough detail for
// the gateway to decide between fallback and abort.
type ProviderError struct {
	ProviderID string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.ProviderID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.ProviderID, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Terminal reports whether this failure is a configuration or auth
// problem that no other provider will fix.
func (e *ProviderError) Terminal() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// shouldFallback classifies an attempt failure. Rate limits, server
// errors, timeouts and connection failures are transient and worth a
// try on the next provider; 400/401/403 abort the chain.
func shouldFallback(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Terminal() {
			return false
		}
		if pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode >= 500 {
			return true
		}
		// No HTTP status: transport-level failure, fall through to the
		// net/context checks below.
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Unknown failure shape: treat as transient so a healthy provider
	// further down the chain still gets a chance.
	return true
}
