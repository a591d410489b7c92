// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

// ErrNoJSONObject means the model output contained no balanced JSON
// object at all.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// ExtractJSONObject returns the first balanced {...} substring of text,
// tracking string literals and escapes so braces inside strings do not
// confuse the scan.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}

// componentWire is the exact wire shape a dimension response must have.
// Extra fields, missing fields that break range checks, or malformed
// JSON all fail the decode; the affected dimension is then dropped.
type componentWire struct {
	Score           int           `json:"score"`
	Confidence      int           `json:"confidence"`
	Assessment      string        `json:"assessment"`
	Findings        []findingWire `json:"findings"`
	Recommendations []string      `json:"recommendations"`
}

type findingWire struct {
	Criterion string `json:"criterion"`
	MaxPoints int    `json:"max_points"`
	Points    int    `json:"points"`
	Status    string `json:"status"`
	Evidence  string `json:"evidence"`
	Concern   string `json:"concern"`
}

// ParseComponentEvaluation extracts and strictly decodes one dimension
// response from raw model output.
func ParseComponentEvaluation(dim Dimension, raw string) (datatypes.ComponentEvaluation, error) {
	var zero datatypes.ComponentEvaluation

	jsonText, err := ExtractJSONObject(raw)
	if err != nil {
		return zero, err
	}

	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.DisallowUnknownFields()
	var wire componentWire
	if err := dec.Decode(&wire); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", dim, err)
	}

	if wire.Score < 0 || wire.Score > datatypes.ComponentMaxScore {
		return zero, fmt.Errorf("%s: score %d out of range [0,%d]", dim, wire.Score, datatypes.ComponentMaxScore)
	}
	if wire.Confidence < 0 || wire.Confidence > 100 {
		return zero, fmt.Errorf("%s: confidence %d out of range [0,100]", dim, wire.Confidence)
	}

	findings := make([]datatypes.ComponentFinding, 0, len(wire.Findings))
	for _, f := range wire.Findings {
		status := datatypes.FindingStatus(f.Status)
		switch status {
		case datatypes.FindingStrong, datatypes.FindingAdequate, datatypes.FindingWeak, datatypes.FindingMissing:
		default:
			return zero, fmt.Errorf("%s: invalid finding status %q", dim, f.Status)
		}
		if f.MaxPoints <= 0 || f.Points < 0 || f.Points > f.MaxPoints {
			return zero, fmt.Errorf("%s: finding %q points %d out of range [0,%d]", dim, f.Criterion, f.Points, f.MaxPoints)
		}
		findings = append(findings, datatypes.ComponentFinding{
			Criterion: f.Criterion,
			MaxPoints: f.MaxPoints,
			Points:    f.Points,
			Status:    status,
			Evidence:  f.Evidence,
			Concern:   f.Concern,
		})
	}

	return datatypes.ComponentEvaluation{
		ComponentID:     string(dim),
		MaxScore:        datatypes.ComponentMaxScore,
		Score:           wire.Score,
		Confidence:      wire.Confidence,
		Findings:        findings,
		Assessment:      wire.Assessment,
		Recommendations: wire.Recommendations,
	}, nil
}
