// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package llm

import "context"

// CallRequest carries one evaluation prompt through the gateway.
type CallRequest struct {
	SystemPrompt string
	UserPrompt   string

	// Temperature should be fixed low for reproducible scoring.
	Temperature float32
	MaxTokens   int

	// Seed is applied where the backend supports it (best effort).
	Seed int
}

// ProviderClient is the uniform contract every backend implements.
type ProviderClient interface {
	// ID returns the stable provider identifier (e.g. "anthropic").
	ID() string

	// Complete performs exactly one network round-trip. Failures are
	// returned as *ProviderError so the gateway can classify them.
	Complete(ctx context.Context, req CallRequest) (string, error)
}
