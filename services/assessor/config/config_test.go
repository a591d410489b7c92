// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// clearProviderEnv blanks every variable Load reads so tests are
// hermetic regardless of the developer's shell.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VERDANT_MODE", "VERDANT_PORT", "VERDANT_CALL_TIMEOUT", "VERDANT_PROVIDER_ORDER",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OLLAMA_URL",
		"CLAUDE_MODEL", "OPENAI_MODEL", "OLLAMA_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	assert.Equal(t, ModeHybrid, cfg.Mode)
	assert.Equal(t, 12300, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.CallTimeout)
	assert.Empty(t, cfg.Providers, "no credentials means an empty chain")
}

func TestLoad_InvalidMode(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("VERDANT_MODE", "vibes")

	_, err := Load(testLogger())
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearProviderEnv(t)

	for _, port := range []string{"abc", "-1", "0", "70000"} {
		t.Setenv("VERDANT_PORT", port)
		_, err := Load(testLogger())
		assert.Error(t, err, "port %q", port)
	}
}

func TestLoad_CallTimeout(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("VERDANT_CALL_TIMEOUT", "30s")

	cfg, err := Load(testLogger())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)

	t.Setenv("VERDANT_CALL_TIMEOUT", "-5s")
	_, err = Load(testLogger())
	assert.Error(t, err)
}

func TestLoad_DefaultChainUsesAvailableCredentials(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OLLAMA_URL", "http://localhost:11434")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, ProviderOpenAI, cfg.Providers[0].Kind)
	assert.Equal(t, ProviderOllama, cfg.Providers[1].Kind)
}

func TestLoad_ExplicitOrderIsStrict(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VERDANT_PROVIDER_ORDER", "anthropic,openai")

	// Anthropic is listed but has no key: explicit chains fail loudly
	// instead of silently shrinking.
	_, err := Load(testLogger())
	assert.Error(t, err)
}

func TestLoad_ExplicitOrderControlsPriority(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VERDANT_PROVIDER_ORDER", "openai,anthropic")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, ProviderOpenAI, cfg.Providers[0].Kind)
	assert.Equal(t, ProviderAnthropic, cfg.Providers[1].Kind)
}

func TestLoad_ModelOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "gpt-4o", cfg.Providers[0].Model)
}
