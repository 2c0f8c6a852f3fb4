package reducer

import (
	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/nav"
)

// navigateTo moves the session to dest, unlocking dimensions at or after the
// destination and resetting every payload whose owning step is now in the
// future. Locked must already be filtered to dimensions strictly before
// dest. Running the same navigation twice yields the same state.
// Navigation settles any in-flight request: the controller aborts the handle
// before dispatching, so the transient state must clear here or nothing
// else will.
func navigateTo(state converge.SessionState, dest converge.Step, locked []converge.LockedDimension, options []converge.DimensionOption) converge.SessionState {
	mode := state.Mode

	state = settle(state)
	state.Step = dest
	state.LockedDimensions = locked
	state.FocusedOption = 0

	if nav.StepPrecedes(dest, converge.StepCameraMotion, mode) {
		state.SelectedCameraMotion = ""
		state.DepthMapURL = ""
		state.CameraPaths = nil
		state.CameraMotionFallback = false
	}
	if nav.StepPrecedes(dest, converge.StepSubjectMotion, mode) {
		state.SubjectMotion = ""
		state.SubjectMotionVideoURL = ""
		state.SubjectMotionInputMode = ""
		state.SubjectMotionStartImageURL = ""
	}
	if nav.StepPrecedes(dest, converge.StepFinalFrame, mode) {
		state.FinalFrameURL = ""
		state.FinalFrameRegenerations = 0
	}
	if nav.StepPrecedes(dest, converge.StepPreview, mode) {
		state.FinalPrompt = ""
	}
	if dest == converge.StepDirection {
		state.Direction = ""
	}
	if dest == converge.StepStartingPoint {
		// Back to the mode choice: the session survives, the walk restarts.
		// History and regeneration counts are kept; counts never decrease
		// within a session.
		state.Mode = ""
		state.Direction = ""
		state.LockedDimensions = nil
		state.UploadedImageURL = ""
		state.CurrentImages = nil
		state.CurrentOptions = nil
		return state
	}

	if dim, ok := nav.DimensionForStep(dest); ok {
		if images, cached := state.CachedImages(dim); cached {
			state.CurrentImages = images
		}
		if len(options) > 0 {
			state.CurrentOptions = options
		}
	}
	return state
}
