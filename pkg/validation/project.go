// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation validates inbound project inputs before they reach
// the assessment pipeline. Invalid inputs are rejected at the boundary;
// every evaluator downstream may assume the invariants hold.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

// validate is package-level because validator.Validate caches struct
// metadata; constructing it per call throws that cache away.
var validate = validator.New(validator.WithRequiredStructEnabled())

// maxTargetYear rejects obvious data-entry mistakes.
const maxTargetYear = 2150

// ValidateProject checks the struct tags plus the cross-field
// invariants the tags cannot express.
//
// Example:
//
//	if err := validation.ValidateProject(project); err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func ValidateProject(p datatypes.ProjectInput) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("project input invalid: %w", err)
	}

	if p.TargetYear != 0 && (p.TargetYear < 1990 || p.TargetYear > maxTargetYear) {
		return fmt.Errorf("project input invalid: target_year %d out of range [1990,%d]", p.TargetYear, maxTargetYear)
	}

	return nil
}
