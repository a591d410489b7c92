// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine runs one complete assessment: the deterministic rule
// detector, the AI component evaluator and the safeguard evaluator, all
// merged by the score combiner. Evaluation is request-scoped and
// stateless; no mutable state survives between assessments.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/Verdant/services/assessor/combiner"
	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/evaluator"
	"github.com/AleutianAI/Verdant/services/assessor/llm"
	"github.com/AleutianAI/Verdant/services/assessor/redflag"
	"github.com/AleutianAI/Verdant/services/assessor/safeguard"
)

var tracer = otel.Tracer("verdant/assessor/engine")

var (
	assessmentSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verdant_assessment_seconds",
		Help:    "End-to-end wall-clock duration of one assessment.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdant_assessments_total",
		Help: "Completed assessments by resulting risk level and AI usage.",
	}, []string{"risk_level", "ai_used"})
)

// AIEvaluator is the component-evaluation contract the engine depends
// on; satisfied by *evaluator.Evaluator and by test fakes.
type AIEvaluator interface {
	Evaluate(ctx context.Context, document string, project datatypes.ProjectInput) datatypes.AIResult
}

// SafeguardEvaluator is the DNSH contract; satisfied by
// *safeguard.Evaluator and by test fakes.
type SafeguardEvaluator interface {
	Evaluate(ctx context.Context, project datatypes.ProjectInput, document string) *datatypes.SafeguardAssessment
}

// Engine owns the assessment pipeline.
//
// # Thread Safety
//
// Engine is immutable after construction and safe for concurrent use;
// every Assess call is independent.
type Engine struct {
	detector  *redflag.Detector
	aiEval    AIEvaluator
	sgEval    SafeguardEvaluator
	combine   *combiner.Combiner
	providers bool
	logger    *slog.Logger
}

// New wires the full pipeline from the process configuration.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	gateway := llm.NewGateway(cfg, logger)
	return &Engine{
		detector:  redflag.NewDetector(),
		aiEval:    evaluator.New(gateway, logger),
		sgEval:    safeguard.New(gateway, logger),
		combine:   combiner.New(cfg.Mode),
		providers: gateway.HasProviders(),
		logger:    logger,
	}
}

// NewWithComponents assembles an engine from pre-built parts. Used by
// tests and by callers that need a custom pre-filter or fake backends.
func NewWithComponents(detector *redflag.Detector, ai AIEvaluator, sg SafeguardEvaluator,
	cmb *combiner.Combiner, hasProviders bool, logger *slog.Logger) *Engine {
	return &Engine{
		detector:  detector,
		aiEval:    ai,
		sgEval:    sg,
		combine:   cmb,
		providers: hasProviders,
		logger:    logger,
	}
}

// Assess runs one complete assessment.
//
// # Description
//
// The rule detector runs synchronously (it is pure and fast). The AI
// component evaluator and the safeguard evaluator run concurrently, so
// wall-clock time is bounded by the slowest branch, not the sum. With
// no providers configured both AI branches are skipped entirely and the
// combiner degrades to rule-only mode. Assess never fails: the worst
// case is a valid rules-only assessment.
func (e *Engine) Assess(ctx context.Context, project datatypes.ProjectInput, document string) datatypes.CombinedAssessment {
	ctx, span := tracer.Start(ctx, "Engine.Assess")
	defer span.End()

	start := time.Now()

	ruleResult := e.detector.Detect(project)

	var aiResult *datatypes.AIResult
	var sgResult *datatypes.SafeguardAssessment

	if e.providers {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res := e.aiEval.Evaluate(gctx, document, project)
			aiResult = &res
			return nil
		})
		g.Go(func() error {
			sgResult = e.sgEval.Evaluate(gctx, project, document)
			return nil
		})
		// Evaluator failures are absorbed into their results; the group
		// never carries an error here.
		_ = g.Wait()
	} else {
		e.logger.Debug("no providers configured, skipping AI and safeguard evaluation")
	}

	assessment := e.combine.Combine(ruleResult, aiResult, sgResult)

	duration := time.Since(start)
	assessmentSeconds.Observe(duration.Seconds())
	assessmentsTotal.WithLabelValues(string(assessment.RiskLevel), boolLabel(assessment.AIEvaluationUsed)).Inc()
	span.SetAttributes(
		attribute.String("assessment.risk_level", string(assessment.RiskLevel)),
		attribute.Int("assessment.penalty", assessment.CombinedPenalty),
		attribute.Bool("assessment.ai_used", assessment.AIEvaluationUsed),
	)

	e.logger.Info("assessment complete",
		"assessment_id", assessment.AssessmentID,
		"project", project.Name,
		"risk_level", string(assessment.RiskLevel),
		"penalty", assessment.CombinedPenalty,
		"rule_flags", len(assessment.RuleFlags),
		"ai_used", assessment.AIEvaluationUsed,
		"duration_ms", duration.Milliseconds(),
	)

	return assessment
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
