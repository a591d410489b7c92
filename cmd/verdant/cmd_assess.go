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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/Verdant/pkg/logging"
	"github.com/AleutianAI/Verdant/pkg/validation"
	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
	"github.com/AleutianAI/Verdant/services/assessor/engine"
)

var (
	assessInputPath    string
	assessDocumentPath string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a single project and print the result as JSON",
	Long: `Assess reads a project description from a JSON file, runs the full
assessment pipeline once, and prints the combined assessment to stdout.
It uses the same configuration environment as the serve command; with no
providers configured the assessment is rules-only.`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessInputPath, "input", "i", "", "path to the project JSON file (required)")
	assessCmd.Flags().StringVarP(&assessDocumentPath, "document", "d", "", "path to a supporting document text file")
	_ = assessCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:   logging.LevelWarn, // keep stdout clean for the JSON result
		Service: "assessor",
	})
	defer logger.Close()

	raw, err := os.ReadFile(assessInputPath)
	if err != nil {
		return fmt.Errorf("reading project file: %w", err)
	}
	var project datatypes.ProjectInput
	if err := json.Unmarshal(raw, &project); err != nil {
		return fmt.Errorf("parsing project file: %w", err)
	}
	if err := validation.ValidateProject(project); err != nil {
		return err
	}

	var document string
	if assessDocumentPath != "" {
		docBytes, err := os.ReadFile(assessDocumentPath)
		if err != nil {
			return fmt.Errorf("reading document file: %w", err)
		}
		document = string(docBytes)
	}

	cfg, err := config.Load(logger.Slog())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	eng := engine.New(cfg, logger.Slog())
	assessment := eng.Assess(cmd.Context(), project, document)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(assessment)
}
