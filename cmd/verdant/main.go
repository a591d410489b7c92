// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "verdant",
	Short: "Verdant transition-finance compliance and risk scoring engine",
	Long: `Verdant assesses financing-project descriptions against a fixed
compliance rubric and produces a bounded risk and eligibility score from
three signal sources: deterministic red-flag rules, AI component
evaluation through a multi-provider fallback chain, and an independent
do-no-significant-harm safeguard assessment.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
