// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safeguard

// Objective is the closed set of environmental do-no-significant-harm
// objectives. Each is scored independently against its own ceiling.
type Objective string

const (
	ObjectiveClimateMitigation   Objective = "climate_mitigation"
	ObjectiveClimateAdaptation   Objective = "climate_adaptation"
	ObjectiveWaterResources      Objective = "water_resources"
	ObjectiveCircularEconomy     Objective = "circular_economy"
	ObjectivePollutionPrevention Objective = "pollution_prevention"
	ObjectiveBiodiversity        Objective = "biodiversity"
)

// AllObjectives returns the fixed assessment order.
func AllObjectives() []Objective {
	return []Objective{
		ObjectiveClimateMitigation,
		ObjectiveClimateAdaptation,
		ObjectiveWaterResources,
		ObjectiveCircularEconomy,
		ObjectivePollutionPrevention,
		ObjectiveBiodiversity,
	}
}

// MaxScore returns the ceiling for the objective. Climate mitigation
// carries the largest weight; the six ceilings sum to 100.
func (o Objective) MaxScore() int {
	switch o {
	case ObjectiveClimateMitigation:
		return 20
	default:
		return 16
	}
}

// DisplayName returns the human-readable objective name.
func (o Objective) DisplayName() string {
	switch o {
	case ObjectiveClimateMitigation:
		return "Climate change mitigation"
	case ObjectiveClimateAdaptation:
		return "Climate change adaptation"
	case ObjectiveWaterResources:
		return "Sustainable use of water and marine resources"
	case ObjectiveCircularEconomy:
		return "Transition to a circular economy"
	case ObjectivePollutionPrevention:
		return "Pollution prevention and control"
	case ObjectiveBiodiversity:
		return "Protection of biodiversity and ecosystems"
	}
	return string(o)
}

// rubric returns the objective-specific guidance embedded in the prompt.
func (o Objective) rubric() string {
	switch o {
	case ObjectiveClimateMitigation:
		return `Does the project avoid locking in greenhouse-gas-intensive assets or practices?
Projects that expand unabated fossil capacity are structurally incapable of
satisfying this objective and must be marked fundamentally incompatible.`
	case ObjectiveClimateAdaptation:
		return `Does the project account for physical climate risk to its own assets and avoid
increasing the climate vulnerability of surrounding systems?`
	case ObjectiveWaterResources:
		return `Does the project avoid significant harm to water bodies: abstraction pressure,
thermal discharge, marine impacts?`
	case ObjectiveCircularEconomy:
		return `Does the project avoid significant waste generation and support material reuse,
durability and recyclability?`
	case ObjectivePollutionPrevention:
		return `Does the project avoid significant emissions of pollutants to air, water or soil
beyond greenhouse gases?`
	case ObjectiveBiodiversity:
		return `Does the project avoid significant harm to habitats, protected areas and species,
including through land-use change?`
	}
	return ""
}
