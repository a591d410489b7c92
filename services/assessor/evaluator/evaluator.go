// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evaluator dispatches the AI component evaluation: one
// independently scored 0-25 dimension per gateway call, run
// concurrently, aggregated into a 0-100 compliance signal.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/llm"
)

var tracer = otel.Tracer("verdant/assessor/evaluator")

const (
	// scoringTemperature is fixed low so results are reproducible for a
	// given document. Best effort: the models are not contractually
	// deterministic.
	scoringTemperature = 0.1

	// scoringSeed is passed to backends that support seeding.
	scoringSeed = 42

	maxResponseTokens = 2048

	maxListedFindings = 5
)

// Evaluator runs the component evaluation through the provider gateway.
//
// # Thread Safety
//
// Evaluator is immutable after construction and safe for concurrent use.
type Evaluator struct {
	gateway *llm.Gateway
	logger  *slog.Logger
}

// New creates an Evaluator over the given gateway.
func New(gateway *llm.Gateway, logger *slog.Logger) *Evaluator {
	return &Evaluator{gateway: gateway, logger: logger}
}

// dimensionOutcome carries one dimension's result out of its goroutine.
type dimensionOutcome struct {
	eval datatypes.ComponentEvaluation
	ok   bool
}

// Evaluate scores the document across all dimensions.
//
// # Description
//
// One gateway call per dimension, dispatched concurrently so total
// latency is bounded by the slowest dimension, not the sum. A failed
// call or an unparseable response drops that dimension (no retry); the
// remaining dimensions still produce a result. Only when every
// dimension drops does the evaluator report Success=false, telling the
// combiner to fall back to rule-only mode.
//
// Aggregation: normalizedScore = round(100 * sum(scores) /
// (25 * successfulDimensions)); confidence is the mean of surviving
// per-dimension confidences.
func (e *Evaluator) Evaluate(ctx context.Context, document string, project datatypes.ProjectInput) datatypes.AIResult {
	ctx, span := tracer.Start(ctx, "Evaluator.Evaluate")
	defer span.End()

	dims := AllDimensions()
	outcomes := make([]dimensionOutcome, len(dims))
	userPrompt := buildUserPrompt(document, project)

	// Dimension drops are absorbed, never propagated, so the group
	// errors only on context cancellation.
	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range dims {
		g.Go(func() error {
			outcomes[i] = e.evaluateDimension(gctx, dim, userPrompt)
			return nil
		})
	}
	_ = g.Wait()

	var components []datatypes.ComponentEvaluation
	totalScore, totalConfidence := 0, 0
	for _, outcome := range outcomes {
		if !outcome.ok {
			continue
		}
		components = append(components, outcome.eval)
		totalScore += outcome.eval.Score
		totalConfidence += outcome.eval.Confidence
	}

	succeeded := len(components)
	span.SetAttributes(
		attribute.Int("evaluator.dimensions_total", len(dims)),
		attribute.Int("evaluator.dimensions_succeeded", succeeded),
	)

	if succeeded == 0 {
		e.logger.Warn("all evaluation dimensions failed, AI signal unavailable")
		return datatypes.AIResult{Success: false}
	}
	if succeeded < len(dims) {
		e.logger.Warn("partial evaluation",
			"dimensions_succeeded", succeeded,
			"dimensions_total", len(dims),
		)
	}

	normalized := int(math.Round(100 * float64(totalScore) / float64(datatypes.ComponentMaxScore*succeeded)))
	concerns, positives := collectFindings(components)

	return datatypes.AIResult{
		Success:          true,
		NormalizedScore:  normalized,
		RiskLevel:        RiskLevelForScore(normalized),
		Confidence:       totalConfidence / succeeded,
		Components:       components,
		TopConcerns:      concerns,
		PositiveFindings: positives,
	}
}

// evaluateDimension issues one gateway call and parses the response.
func (e *Evaluator) evaluateDimension(ctx context.Context, dim Dimension, userPrompt string) dimensionOutcome {
	result := e.gateway.Call(ctx, llm.CallRequest{
		SystemPrompt: dim.SystemPrompt(),
		UserPrompt:   userPrompt,
		Temperature:  scoringTemperature,
		MaxTokens:    maxResponseTokens,
		Seed:         scoringSeed,
	})
	if !result.Success {
		e.logger.Warn("dimension call failed, dropping dimension",
			"dimension", string(dim),
			"error", result.Err.Error(),
		)
		return dimensionOutcome{}
	}

	eval, err := ParseComponentEvaluation(dim, result.Content)
	if err != nil {
		e.logger.Warn("dimension response unparseable, dropping dimension",
			"dimension", string(dim),
			"provider", result.ProviderID,
			"error", err.Error(),
		)
		return dimensionOutcome{}
	}
	return dimensionOutcome{eval: eval, ok: true}
}

// RiskLevelForScore maps a 0-100 compliance score onto the five-step
// risk classification.
func RiskLevelForScore(score int) datatypes.RiskLevel {
	switch {
	case score >= 80:
		return datatypes.RiskLow
	case score >= 60:
		return datatypes.RiskMediumLow
	case score >= 40:
		return datatypes.RiskMedium
	case score >= 20:
		return datatypes.RiskMediumHigh
	default:
		return datatypes.RiskHigh
	}
}

// collectFindings extracts the top concerns and positive findings from
// the component findings, bounded so output size stays predictable.
func collectFindings(components []datatypes.ComponentEvaluation) (concerns, positives []string) {
	for _, comp := range components {
		for _, f := range comp.Findings {
			switch f.Status {
			case datatypes.FindingMissing, datatypes.FindingWeak:
				if f.Concern != "" && len(concerns) < maxListedFindings {
					concerns = append(concerns, f.Concern)
				}
			case datatypes.FindingStrong:
				if f.Evidence != "" && len(positives) < maxListedFindings {
					positives = append(positives, f.Evidence)
				}
			}
		}
	}
	return concerns, positives
}

// buildUserPrompt assembles the document and the structured project
// fields into one evaluation payload.
func buildUserPrompt(document string, p datatypes.ProjectInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROJECT: %s\nCOUNTRY: %s\nSECTOR: %s\n", p.Name, p.Country, p.Sector)
	fmt.Fprintf(&b, "FINANCING: total=%.0f debt=%.0f equity=%.0f\n",
		p.TotalFinancing, p.DebtFinancing, p.EquityFinancing)
	fmt.Fprintf(&b, "CURRENT EMISSIONS (tCO2e): scope1=%.0f scope2=%.0f", p.CurrentEmissions.Scope1, p.CurrentEmissions.Scope2)
	if p.CurrentEmissions.Scope3 != nil {
		fmt.Fprintf(&b, " scope3=%.0f", *p.CurrentEmissions.Scope3)
	} else {
		b.WriteString(" scope3=not reported")
	}
	fmt.Fprintf(&b, "\nTARGET EMISSIONS (tCO2e): scope1=%.0f scope2=%.0f",
		p.TargetEmissions.Scope1, p.TargetEmissions.Scope2)
	if p.TargetEmissions.Scope3 != nil {
		fmt.Fprintf(&b, " scope3=%.0f", *p.TargetEmissions.Scope3)
	}
	fmt.Fprintf(&b, "\nTARGET YEAR: %d\nPUBLISHED PLAN: %t\nTHIRD-PARTY VERIFICATION: %t\n",
		p.TargetYear, p.HasPublishedPlan, p.ThirdPartyVerification)
	if p.Description != "" {
		fmt.Fprintf(&b, "\nDESCRIPTION:\n%s\n", p.Description)
	}
	if p.Strategy != "" {
		fmt.Fprintf(&b, "\nSTRATEGY:\n%s\n", p.Strategy)
	}
	if document != "" {
		fmt.Fprintf(&b, "\nSOURCE DOCUMENT:\n%s\n", document)
	}
	return b.String()
}
