// Package nav resolves positions in the convergence flow. Every function is
// a lookup over static tables keyed by the closed step and dimension
// enumerations; there is no state and no error path.
package nav

import (
	"github.com/goliatone/go-converge"
)

// longSequence walks every visual dimension before the motion steps.
var longSequence = []converge.Step{
	converge.StepIntent,
	converge.StepStartingPoint,
	converge.StepDirection,
	converge.StepMood,
	converge.StepFraming,
	converge.StepLighting,
	converge.StepFinalFrame,
	converge.StepCameraMotion,
	converge.StepSubjectMotion,
	converge.StepPreview,
	converge.StepComplete,
}

// shortSequence skips dimension selection; upload and quick sessions start
// from an existing image.
var shortSequence = []converge.Step{
	converge.StepIntent,
	converge.StepStartingPoint,
	converge.StepFinalFrame,
	converge.StepCameraMotion,
	converge.StepSubjectMotion,
	converge.StepPreview,
	converge.StepComplete,
}

var stepToDimension = map[converge.Step]converge.Dimension{
	converge.StepDirection:    converge.DimensionDirection,
	converge.StepMood:         converge.DimensionMood,
	converge.StepFraming:      converge.DimensionFraming,
	converge.StepLighting:     converge.DimensionLighting,
	converge.StepCameraMotion: converge.DimensionCameraMotion,
}

var dimensionToStep = map[converge.Dimension]converge.Step{
	converge.DimensionDirection:    converge.StepDirection,
	converge.DimensionMood:         converge.StepMood,
	converge.DimensionFraming:      converge.StepFraming,
	converge.DimensionLighting:     converge.StepLighting,
	converge.DimensionCameraMotion: converge.StepCameraMotion,
}

// dimensionChain is the fixed selection order.
var dimensionChain = []converge.Dimension{
	converge.DimensionDirection,
	converge.DimensionMood,
	converge.DimensionFraming,
	converge.DimensionLighting,
	converge.DimensionCameraMotion,
}

// StepSequence returns the ordered step list for a starting-point mode.
// An unset mode maps to the long sequence, which is the superset.
func StepSequence(mode converge.StartingPointMode) []converge.Step {
	switch mode {
	case converge.ModeUpload, converge.ModeQuick:
		return shortSequence
	default:
		return longSequence
	}
}

// StepOrder returns the index of step in the mode's sequence, or -1 when the
// step is not reachable under that mode.
func StepOrder(step converge.Step, mode converge.StartingPointMode) int {
	for i, s := range StepSequence(mode) {
		if s == step {
			return i
		}
	}
	return -1
}

// NextStep returns the successor of step under mode. The successor of the
// last step is complete.
func NextStep(step converge.Step, mode converge.StartingPointMode) converge.Step {
	seq := StepSequence(mode)
	idx := StepOrder(step, mode)
	if idx < 0 || idx+1 >= len(seq) {
		return converge.StepComplete
	}
	return seq[idx+1]
}

// PreviousStep returns the predecessor of step under mode. The predecessor
// of the first step is the step itself.
func PreviousStep(step converge.Step, mode converge.StartingPointMode) converge.Step {
	seq := StepSequence(mode)
	idx := StepOrder(step, mode)
	if idx <= 0 {
		if idx == 0 {
			return seq[0]
		}
		return step
	}
	return seq[idx-1]
}

// StepPrecedes reports whether a comes strictly before b under mode.
func StepPrecedes(a, b converge.Step, mode converge.StartingPointMode) bool {
	ia, ib := StepOrder(a, mode), StepOrder(b, mode)
	return ia >= 0 && ib >= 0 && ia < ib
}

// DimensionForStep maps a dimension-bearing step to its dimension.
func DimensionForStep(step converge.Step) (converge.Dimension, bool) {
	dim, ok := stepToDimension[step]
	return dim, ok
}

// StepForDimension maps a dimension to its owning step. Total for all
// dimensions.
func StepForDimension(dim converge.Dimension) (converge.Step, bool) {
	step, ok := dimensionToStep[dim]
	return step, ok
}

// NextDimension returns the successor in the fixed dimension chain, or
// false at the end of the chain.
func NextDimension(dim converge.Dimension) (converge.Dimension, bool) {
	for i, d := range dimensionChain {
		if d == dim {
			if i+1 < len(dimensionChain) {
				return dimensionChain[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// PreviousDimension returns the predecessor in the fixed dimension chain, or
// false at the start of the chain.
func PreviousDimension(dim converge.Dimension) (converge.Dimension, bool) {
	for i, d := range dimensionChain {
		if d == dim {
			if i > 0 {
				return dimensionChain[i-1], true
			}
			return "", false
		}
	}
	return "", false
}

// LockedBefore filters locked dimensions to those whose owning step comes
// strictly before target under mode. Callers preparing a direct jump use
// this to compute the authoritative locked subset.
func LockedBefore(locked []converge.LockedDimension, target converge.Step, mode converge.StartingPointMode) []converge.LockedDimension {
	var out []converge.LockedDimension
	for _, ld := range locked {
		step, ok := StepForDimension(ld.Type)
		if !ok {
			continue
		}
		if StepPrecedes(step, target, mode) {
			out = append(out, ld)
		}
	}
	return out
}
