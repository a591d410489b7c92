// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package safeguard implements the independent do-no-significant-harm
// evaluator. Its score is a parallel compliance signal: it is reported
// alongside the combined risk penalty and never folded into it.
package safeguard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/evaluator"
	"github.com/AleutianAI/Verdant/services/assessor/llm"
)

var tracer = otel.Tracer("verdant/assessor/safeguard")

const (
	scoringTemperature = 0.1
	scoringSeed        = 42
	maxResponseTokens  = 1024
	maxKeyRisks        = 6
)

// Evaluator scores the six environmental objectives through the
// provider gateway, one concurrent call per objective.
//
// # Thread Safety
//
// Evaluator is immutable after construction and safe for concurrent use.
type Evaluator struct {
	gateway *llm.Gateway
	logger  *slog.Logger
}

// New creates a safeguard Evaluator over the given gateway.
func New(gateway *llm.Gateway, logger *slog.Logger) *Evaluator {
	return &Evaluator{gateway: gateway, logger: logger}
}

// criterionWire is the strict wire shape for one objective response.
type criterionWire struct {
	Status                      string   `json:"status"`
	Score                       int      `json:"score"`
	Evidence                    string   `json:"evidence"`
	Concern                     string   `json:"concern"`
	IsFundamentallyIncompatible bool     `json:"is_fundamentally_incompatible"`
	Recommendations             []string `json:"recommendations"`
}

type objectiveOutcome struct {
	criterion datatypes.SafeguardCriterion
	ok        bool
}

// Evaluate scores every objective against the project and document.
//
// # Description
//
// Objectives that fail (gateway failure or unparseable response) are
// reported as not_assessed with a zero score and excluded from the
// normalized denominator. When every objective fails, Evaluate returns
// nil: the assessment then carries no safeguard section rather than a
// fabricated zero.
//
// When any criterion is fundamentally incompatible the top-level flag
// is set and that criterion carries an explanation only, never
// corrective recommendations.
func (e *Evaluator) Evaluate(ctx context.Context, project datatypes.ProjectInput, document string) *datatypes.SafeguardAssessment {
	ctx, span := tracer.Start(ctx, "Safeguard.Evaluate")
	defer span.End()

	objectives := AllObjectives()
	outcomes := make([]objectiveOutcome, len(objectives))
	userPrompt := buildUserPrompt(project, document)

	g, gctx := errgroup.WithContext(ctx)
	for i, obj := range objectives {
		g.Go(func() error {
			outcomes[i] = e.evaluateObjective(gctx, obj, userPrompt)
			return nil
		})
	}
	_ = g.Wait()

	criteria := make([]datatypes.SafeguardCriterion, 0, len(objectives))
	assessed := 0
	scoreSum, maxSum := 0, 0
	anySignificantHarm := false
	fundamentallyIncompatible := false
	var keyRisks []string

	for i, obj := range objectives {
		outcome := outcomes[i]
		if !outcome.ok {
			criteria = append(criteria, datatypes.SafeguardCriterion{
				Objective: obj.DisplayName(),
				Status:    datatypes.SafeguardNotAssessed,
				MaxScore:  obj.MaxScore(),
			})
			continue
		}
		c := outcome.criterion
		criteria = append(criteria, c)
		assessed++
		scoreSum += c.Score
		maxSum += c.MaxScore
		if c.Status == datatypes.SafeguardSignificantHarm {
			anySignificantHarm = true
		}
		if c.IsFundamentallyIncompatible {
			fundamentallyIncompatible = true
		}
		if c.Concern != "" && c.Status != datatypes.SafeguardNoHarm && len(keyRisks) < maxKeyRisks {
			keyRisks = append(keyRisks, c.Concern)
		}
	}

	span.SetAttributes(
		attribute.Int("safeguard.objectives_assessed", assessed),
		attribute.Bool("safeguard.fundamentally_incompatible", fundamentallyIncompatible),
	)

	if assessed == 0 {
		e.logger.Warn("all safeguard objectives failed, omitting DNSH assessment")
		return nil
	}

	normalized := int(math.Round(100 * float64(scoreSum) / float64(maxSum)))

	overall := datatypes.SafeguardPartial
	switch {
	case fundamentallyIncompatible || anySignificantHarm || normalized < 40:
		overall = datatypes.SafeguardNonCompliant
	case normalized >= 80:
		overall = datatypes.SafeguardCompliant
	}

	return &datatypes.SafeguardAssessment{
		OverallStatus:               overall,
		NormalizedScore:             normalized,
		Criteria:                    criteria,
		KeyRisks:                    keyRisks,
		IsFundamentallyIncompatible: fundamentallyIncompatible,
	}
}

// evaluateObjective issues one gateway call and strictly decodes it.
func (e *Evaluator) evaluateObjective(ctx context.Context, obj Objective, userPrompt string) objectiveOutcome {
	result := e.gateway.Call(ctx, llm.CallRequest{
		SystemPrompt: systemPrompt(obj),
		UserPrompt:   userPrompt,
		Temperature:  scoringTemperature,
		MaxTokens:    maxResponseTokens,
		Seed:         scoringSeed,
	})
	if !result.Success {
		e.logger.Warn("safeguard objective call failed",
			"objective", string(obj),
			"error", result.Err.Error(),
		)
		return objectiveOutcome{}
	}

	criterion, err := parseCriterion(obj, result.Content)
	if err != nil {
		e.logger.Warn("safeguard objective response unparseable",
			"objective", string(obj),
			"provider", result.ProviderID,
			"error", err.Error(),
		)
		return objectiveOutcome{}
	}
	return objectiveOutcome{criterion: criterion, ok: true}
}

// parseCriterion extracts and validates one objective response.
func parseCriterion(obj Objective, raw string) (datatypes.SafeguardCriterion, error) {
	var zero datatypes.SafeguardCriterion

	jsonText, err := evaluator.ExtractJSONObject(raw)
	if err != nil {
		return zero, err
	}

	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.DisallowUnknownFields()
	var wire criterionWire
	if err := dec.Decode(&wire); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", obj, err)
	}

	status := datatypes.SafeguardStatus(wire.Status)
	switch status {
	case datatypes.SafeguardNoHarm, datatypes.SafeguardPotentialHarm, datatypes.SafeguardSignificantHarm:
	default:
		return zero, fmt.Errorf("%s: invalid status %q", obj, wire.Status)
	}
	if wire.Score < 0 || wire.Score > obj.MaxScore() {
		return zero, fmt.Errorf("%s: score %d out of range [0,%d]", obj, wire.Score, obj.MaxScore())
	}

	recommendations := wire.Recommendations
	if wire.IsFundamentallyIncompatible {
		// No corrective recommendation exists by definition; only the
		// explanation in Concern/Evidence survives.
		recommendations = nil
	}

	return datatypes.SafeguardCriterion{
		Objective:                   obj.DisplayName(),
		Status:                      status,
		Score:                       wire.Score,
		MaxScore:                    obj.MaxScore(),
		Evidence:                    wire.Evidence,
		Concern:                     wire.Concern,
		IsFundamentallyIncompatible: wire.IsFundamentallyIncompatible,
		Recommendations:             recommendations,
	}, nil
}

// systemPrompt builds the objective's scoring prompt.
func systemPrompt(obj Objective) string {
	return fmt.Sprintf(`You are an environmental safeguards analyst applying the do-no-significant-harm test.
OBJECTIVE: %s
%s
Score 0-%d where the maximum means no credible harm pathway exists.
Mark "is_fundamentally_incompatible" true ONLY when the project type structurally cannot satisfy
this objective, meaning no corrective action exists.

Respond with ONLY a single JSON object (no markdown fences, no preamble) of exactly this shape:
{"status":"no_harm|potential_harm|significant_harm","score":0,"evidence":"...","concern":"optional","is_fundamentally_incompatible":false,"recommendations":["optional corrective actions"]}`,
		obj.DisplayName(), obj.rubric(), obj.MaxScore())
}

// buildUserPrompt mirrors the component evaluator's payload but keeps
// only the fields relevant to environmental harm.
func buildUserPrompt(p datatypes.ProjectInput, document string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROJECT: %s\nCOUNTRY: %s\nSECTOR: %s\n", p.Name, p.Country, p.Sector)
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
