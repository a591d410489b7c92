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
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts one Complete outcome and counts invocations.
type fakeProvider struct {
	id      string
	content string
	err     error
	calls   int
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Complete(ctx context.Context, req CallRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func statusErr(provider string, status int) error {
	return &ProviderError{
		ProviderID: provider,
		StatusCode: status,
		Err:        errors.New("backend rejected the request"),
	}
}

func TestGatewayCall_FirstProviderSucceeds(t *testing.T) {
	primary := &fakeProvider{id: "anthropic-primary", content: `{"score": 20}`}
	secondary := &fakeProvider{id: "openai-secondary", content: "unused"}
	gw := NewGatewayWithProviders([]ProviderClient{primary, secondary}, time.Second, testLogger())

	result := gw.Call(context.Background(), CallRequest{UserPrompt: "evaluate"})

	require.True(t, result.Success)
	assert.Equal(t, `{"score": 20}`, result.Content)
	assert.Equal(t, "anthropic-primary", result.ProviderID)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "chain must stop at the first success")
}

func TestGatewayCall_TransientErrorsFallThrough(t *testing.T) {
	rateLimited := &fakeProvider{id: "a", err: statusErr("a", http.StatusTooManyRequests)}
	serverError := &fakeProvider{id: "b", err: statusErr("b", http.StatusBadGateway)}
	healthy := &fakeProvider{id: "c", content: "ok"}
	gw := NewGatewayWithProviders([]ProviderClient{rateLimited, serverError, healthy}, time.Second, testLogger())

	result := gw.Call(context.Background(), CallRequest{})

	require.True(t, result.Success)
	assert.Equal(t, "c", result.ProviderID)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 1, rateLimited.calls)
	assert.Equal(t, 1, serverError.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestGatewayCall_TerminalErrorAbortsChain(t *testing.T) {
	unauthorized := &fakeProvider{id: "a", err: statusErr("a", http.StatusUnauthorized)}
	neverReached := &fakeProvider{id: "b", content: "ok"}
	gw := NewGatewayWithProviders([]ProviderClient{unauthorized, neverReached}, time.Second, testLogger())

	result := gw.Call(context.Background(), CallRequest{})

	require.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrTerminalProvider)
	assert.Equal(t, "a", result.ProviderID)
	assert.Equal(t, 0, neverReached.calls, "terminal failure must not advance the chain")
}

func TestGatewayCall_ChainExhausted(t *testing.T) {
	a := &fakeProvider{id: "a", err: statusErr("a", http.StatusServiceUnavailable)}
	b := &fakeProvider{id: "b", err: statusErr("b", http.StatusInternalServerError)}
	gw := NewGatewayWithProviders([]ProviderClient{a, b}, time.Second, testLogger())

	result := gw.Call(context.Background(), CallRequest{})

	require.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrAllProvidersFailed)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestGatewayCall_EmptyChain(t *testing.T) {
	gw := NewGatewayWithProviders(nil, time.Second, testLogger())

	assert.False(t, gw.HasProviders())
	result := gw.Call(context.Background(), CallRequest{})
	require.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrNoProviders)
}

func TestGatewayCall_NoProviderRetriedTwice(t *testing.T) {
	a := &fakeProvider{id: "a", err: statusErr("a", http.StatusTooManyRequests)}
	gw := NewGatewayWithProviders([]ProviderClient{a}, time.Second, testLogger())

	gw.Call(context.Background(), CallRequest{})
	assert.Equal(t, 1, a.calls)
}

func TestShouldFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", statusErr("p", http.StatusTooManyRequests), true},
		{"server error", statusErr("p", http.StatusInternalServerError), true},
		{"bad gateway", statusErr("p", http.StatusBadGateway), true},
		{"bad request", statusErr("p", http.StatusBadRequest), false},
		{"unauthorized", statusErr("p", http.StatusUnauthorized), false},
		{"forbidden", statusErr("p", http.StatusForbidden), false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", &ProviderError{ProviderID: "p", Err: context.DeadlineExceeded}, true},
		{"unknown error", errors.New("mystery"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldFallback(tt.err))
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := &ProviderError{ProviderID: "ollama-local", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "ollama-local")
}
