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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Verdant/pkg/validation"
	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/engine"
)

// AssessRequest is the inbound payload from the ingestion collaborator:
// the structured project plus the already-extracted document text.
type AssessRequest struct {
	Project  datatypes.ProjectInput `json:"project" binding:"required"`
	Document string                 `json:"document,omitempty"`
}

// HandleAssess runs one synchronous assessment.
//
// The engine never fails (worst case is a rules-only assessment), so
// the only error responses here are input-shape problems.
func HandleAssess(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if err := validation.ValidateProject(req.Project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		assessment := eng.Assess(c.Request.Context(), req.Project, req.Document)
		c.JSON(http.StatusOK, assessment)
	}
}

// HealthCheck reports liveness plus the effective configuration the
// process is running with.
func HealthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"mode":      string(cfg.Mode),
			"providers": len(cfg.Providers),
		})
	}
}
