// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/Verdant/services/assessor/combiner"
	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/engine"
	"github.com/AleutianAI/Verdant/services/assessor/redflag"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ruleOnlyEngine builds an engine with no providers: deterministic,
// network-free, ideal for handler-level tests.
func ruleOnlyEngine() *engine.Engine {
	return engine.NewWithComponents(
		redflag.NewDetector(), nil, nil,
		combiner.New(config.ModeRule), false,
		slog.New(slog.DiscardHandler),
	)
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.POST("/v1/assess", HandleAssess(ruleOnlyEngine()))
	router.GET("/health", HealthCheck(&config.Config{Mode: config.ModeRule}))
	return router
}

func postAssess(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/assess", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAssess_HappyPath(t *testing.T) {
	router := setupRouter()

	w := postAssess(t, router, AssessRequest{
		Project: datatypes.ProjectInput{
			Name:             "District Heating Conversion",
			Sector:           "energy",
			TargetYear:       2031,
			HasPublishedPlan: true,
			CurrentEmissions: datatypes.EmissionsProfile{Scope1: 10000, Scope2: 2000},
			TargetEmissions:  datatypes.EmissionsProfile{Scope1: 4000, Scope2: 1000},
		},
		Document: "conversion of the coal-free district heating grid",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result datatypes.CombinedAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.AssessmentID)
	assert.False(t, result.AIEvaluationUsed)
	assert.GreaterOrEqual(t, result.RuleRiskScore, 0)
	assert.LessOrEqual(t, result.RuleRiskScore, 100)
}

func TestHandleAssess_MalformedJSON(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/assess", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestHandleAssess_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		project datatypes.ProjectInput
	}{
		{
			name:    "missing name",
			project: datatypes.ProjectInput{Sector: "energy"},
		},
		{
			name:    "missing sector",
			project: datatypes.ProjectInput{Name: "x"},
		},
		{
			name: "negative financing",
			project: datatypes.ProjectInput{
				Name: "x", Sector: "energy", TotalFinancing: -5,
			},
		},
		{
			name: "target year before 1990",
			project: datatypes.ProjectInput{
				Name: "x", Sector: "energy", TargetYear: 1600,
			},
		},
		{
			name: "target year beyond ceiling",
			project: datatypes.ProjectInput{
				Name: "x", Sector: "energy", TargetYear: 2200,
			},
		},
	}
	router := setupRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAssess(t, router, AssessRequest{Project: tt.project})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "rule", body["mode"])
}
