// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config builds the immutable process configuration for the
// assessor. Everything is read from the environment exactly once at
// startup; the resulting Config is passed by reference into the engine
// and never mutated or re-read per request.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// BlendMode selects how the score combiner merges signals.
type BlendMode string

const (
	ModeRule   BlendMode = "rule"
	ModeAI     BlendMode = "ai"
	ModeHybrid BlendMode = "hybrid"
)

// ProviderKind identifies a generative-model backend implementation.
type ProviderKind string

const (
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderOpenAI    ProviderKind = "openai"
	ProviderOllama    ProviderKind = "ollama"
)

// ProviderConfig describes one backend in the fallback chain.
type ProviderConfig struct {
	ID      string
	Kind    ProviderKind
	APIKey  string
	BaseURL string
	Model   string
}

// Config is the read-only process configuration.
type Config struct {
	// Mode selects the combiner blending policy.
	Mode BlendMode

	// Providers is the ordered fallback chain. May be empty, in which
	// case every assessment degrades to rule-only mode.
	Providers []ProviderConfig

	// CallTimeout bounds a single provider round-trip.
	CallTimeout time.Duration

	// Port is the HTTP listen port for serve mode.
	Port int
}

const (
	defaultPort        = 12300
	defaultCallTimeout = 90 * time.Second

	defaultAnthropicModel = "claude-3-5-sonnet-20240620"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultOllamaModel    = "granite4:micro-h"
	defaultOllamaURL      = "http://localhost:11434"
)

// Load reads the configuration from the environment.
//
// # Description
//
// Builds the provider chain from VERDANT_PROVIDER_ORDER (comma-separated
// kinds, e.g. "anthropic,openai,ollama"). When unset, the chain contains
// every backend whose credentials are present, in anthropic, openai,
// ollama order. API keys fall back to podman secret files when the
// environment variable is empty.
//
// An empty chain is not an error: the engine runs rule-only.
func Load(logger *slog.Logger) (*Config, error) {
	cfg := &Config{
		Mode:        BlendMode(envOr("VERDANT_MODE", string(ModeHybrid))),
		CallTimeout: defaultCallTimeout,
		Port:        defaultPort,
	}

	switch cfg.Mode {
	case ModeRule, ModeAI, ModeHybrid:
	default:
		return nil, fmt.Errorf("invalid VERDANT_MODE %q (want rule, ai or hybrid)", cfg.Mode)
	}

	if v := os.Getenv("VERDANT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid VERDANT_PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("VERDANT_CALL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid VERDANT_CALL_TIMEOUT %q", v)
		}
		cfg.CallTimeout = d
	}

	order := strings.Split(envOr("VERDANT_PROVIDER_ORDER", "anthropic,openai,ollama"), ",")
	explicit := os.Getenv("VERDANT_PROVIDER_ORDER") != ""

	for _, name := range order {
		kind := ProviderKind(strings.TrimSpace(strings.ToLower(name)))
		pc, ok := buildProvider(kind)
		if !ok {
			if explicit {
				return nil, fmt.Errorf("provider %q listed in VERDANT_PROVIDER_ORDER but not configured", kind)
			}
			continue
		}
		cfg.Providers = append(cfg.Providers, pc)
	}

	if len(cfg.Providers) == 0 {
		logger.Warn("no AI providers configured, assessments will run rule-only")
	} else {
		ids := make([]string, 0, len(cfg.Providers))
		for _, p := range cfg.Providers {
			ids = append(ids, p.ID)
		}
		logger.Info("provider chain configured",
			"providers", strings.Join(ids, ","),
			"mode", string(cfg.Mode),
		)
	}

	return cfg, nil
}

// buildProvider assembles one provider config from the environment.
// Returns false when the backend's credentials are absent.
func buildProvider(kind ProviderKind) (ProviderConfig, bool) {
	switch kind {
	case ProviderAnthropic:
		key := secretOrEnv("ANTHROPIC_API_KEY", "/run/secrets/anthropic_api_key")
		if key == "" {
			return ProviderConfig{}, false
		}
		return ProviderConfig{
			ID:     "anthropic",
			Kind:   ProviderAnthropic,
			APIKey: key,
			Model:  envOr("CLAUDE_MODEL", defaultAnthropicModel),
		}, true

	case ProviderOpenAI:
		key := secretOrEnv("OPENAI_API_KEY", "/run/secrets/openai_api_key")
		if key == "" {
			return ProviderConfig{}, false
		}
		return ProviderConfig{
			ID:     "openai",
			Kind:   ProviderOpenAI,
			APIKey: key,
			Model:  envOr("OPENAI_MODEL", defaultOpenAIModel),
		}, true

	case ProviderOllama:
		url := os.Getenv("OLLAMA_URL")
		if url == "" {
			// Ollama needs no key; it only joins the default chain when
			// explicitly pointed at a server.
			return ProviderConfig{}, false
		}
		return ProviderConfig{
			ID:      "ollama",
			Kind:    ProviderOllama,
			BaseURL: url,
			Model:   envOr("OLLAMA_MODEL", defaultOllamaModel),
		}, true

	default:
		return ProviderConfig{}, false
	}
}

// secretOrEnv reads the env var first, then the podman secret file.
func secretOrEnv(envKey, secretPath string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if content, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(content))
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
