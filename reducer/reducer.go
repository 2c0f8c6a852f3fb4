// Package reducer implements the session state machine as a pure transition
// function. Every action has a defined effect for every reachable state;
// unknown actions return the state unchanged. The reducer never suspends and
// never performs I/O — cancellation handles, network calls and catalog
// lookups belong to the controller.
package reducer

import (
	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/nav"
)

// Reduce computes the next session state for one action.
func Reduce(state converge.SessionState, action converge.Action) converge.SessionState {
	switch a := action.(type) {
	case converge.SetIntent:
		state.Intent = a.Intent
		return state

	case converge.RequestStarted:
		state.Loading = true
		state.LoadingOperation = a.Operation
		state.RequestToken = a.Token
		state.ErrorMessage = ""
		return state

	case converge.RequestFailed:
		state = settle(state)
		state.ErrorMessage = a.Message
		return state

	case converge.StartSessionSuccess:
		return startSession(state, a)

	case converge.SelectOptionSuccess:
		return selectOption(state, a)

	case converge.RestoreCachedImages:
		return restoreCached(state, a)

	case converge.RegenerateSuccess:
		return regenerate(state, a)

	case converge.GoBack:
		dest := nav.PreviousStep(state.Step, state.Mode)
		if dest == state.Step {
			return settle(state)
		}
		locked := nav.LockedBefore(state.LockedDimensions, dest, state.Mode)
		return navigateTo(state, dest, locked, a.Options)

	case converge.JumpToStep:
		if nav.StepOrder(a.Target, state.Mode) < 0 {
			return settle(state)
		}
		return navigateTo(state, a.Target, converge.CopyLocked(a.Locked), a.Options)

	case converge.CancelGeneration:
		return settle(state)

	case converge.PromptResume:
		state = settle(state)
		snapshot := a.Snapshot
		state.PendingResume = &snapshot
		return state

	case converge.ResumeSession:
		return resume(state, a)

	case converge.AbandonSession:
		return converge.InitialState()

	case converge.Reset:
		return converge.InitialState()

	case converge.ShowCreditsModal:
		state = settle(state)
		state.CreditsModal = &converge.CreditsPrompt{
			Required:  a.Required,
			Available: a.Available,
			Operation: a.Operation,
		}
		return state

	case converge.HideCreditsModal:
		state.CreditsModal = nil
		return state

	case converge.ShowSessionExpiredModal:
		state = settle(state)
		state.SessionExpired = &converge.ExpiryPrompt{Intent: a.Intent}
		return state

	case converge.HideSessionExpiredModal:
		// An expired session cannot be continued.
		return converge.InitialState()

	case converge.MoveFocus:
		return moveFocus(state, a.Direction)

	case converge.GenerateFinalFrameSuccess:
		state = settle(state)
		state.FinalFrameURL = a.URL
		if a.Regenerated {
			state.FinalFrameRegenerations++
		}
		return state

	case converge.CameraMotionSuccess:
		state = settle(state)
		state.Step = converge.StepCameraMotion
		state.DepthMapURL = a.DepthMapURL
		state.CameraPaths = converge.NormalizeCameraPaths(a.Paths)
		state.CameraMotionFallback = a.FallbackMode
		// Camera paths are the focusable set here; the previous step's
		// display must not linger.
		state.CurrentImages = nil
		state.CurrentOptions = nil
		state.FocusedOption = 0
		return state

	case converge.SelectCameraMotion:
		state = settle(state)
		state.SelectedCameraMotion = a.MotionID
		state.Step = nav.NextStep(converge.StepCameraMotion, state.Mode)
		state.CurrentImages = nil
		state.CurrentOptions = nil
		state.FocusedOption = 0
		return state

	case converge.SetSubjectMotion:
		state.SubjectMotion = a.Description
		return state

	case converge.SubjectMotionSuccess:
		state = settle(state)
		state.SubjectMotionVideoURL = a.VideoURL
		state.SubjectMotionInputMode = a.InputMode
		state.SubjectMotionStartImageURL = a.StartImageURL
		if a.Prompt != "" {
			state.SubjectMotion = a.Prompt
		}
		state.Step = converge.StepPreview
		state.CurrentImages = nil
		state.CurrentOptions = nil
		return state

	case converge.SkipSubjectMotion:
		state.SubjectMotion = ""
		state.SubjectMotionVideoURL = ""
		state.SubjectMotionInputMode = ""
		state.SubjectMotionStartImageURL = ""
		state.Step = converge.StepPreview
		state.CurrentImages = nil
		state.CurrentOptions = nil
		return state

	case converge.FinalizeSuccess:
		state = settle(state)
		state.FinalPrompt = a.FinalPrompt
		if len(a.Locked) > 0 {
			state.LockedDimensions = converge.CopyLocked(a.Locked)
		}
		state.Step = converge.StepComplete
		return state

	case converge.ClearError:
		state.ErrorMessage = ""
		return state

	default:
		return state
	}
}

// settle clears transient request state, keeping all business data.
func settle(state converge.SessionState) converge.SessionState {
	state.Loading = false
	state.LoadingOperation = ""
	state.RequestToken = 0
	state.ErrorMessage = ""
	return state
}

// startSession re-initializes every per-session field around the new session
// identity. This is the only transition allowed to discard accumulated
// choices without an explicit reset.
func startSession(state converge.SessionState, a converge.StartSessionSuccess) converge.SessionState {
	next := converge.InitialState()
	next.SessionID = a.SessionID
	next.Intent = a.Intent
	if next.Intent == "" {
		next.Intent = state.Intent
	}
	next.AspectRatio = a.AspectRatio
	next.Mode = a.Mode
	next.UploadedImageURL = a.UploadedImageURL
	next.CurrentImages = a.Images
	next.CurrentOptions = a.Options

	if a.Mode == "" {
		next.Step = converge.StepStartingPoint
	} else {
		next.Step = nav.NextStep(converge.StepStartingPoint, a.Mode)
	}
	if dim, ok := nav.DimensionForStep(next.Step); ok && len(a.Images) > 0 {
		next = next.WithHistory(dim, a.Images)
	}
	return next
}

// selectOption commits a choice and advances to the server-decided target.
// The server's locked-dimension list is authoritative. Images are recorded
// into history keyed by the dimension being entered; motion and final-frame
// targets are not dimension-indexed.
func selectOption(state converge.SessionState, a converge.SelectOptionSuccess) converge.SessionState {
	state = settle(state)
	state.Step = a.Target
	state.LockedDimensions = converge.CopyLocked(a.Locked)
	if a.Direction != "" {
		state.Direction = a.Direction
	}
	state.CurrentImages = a.Images
	state.CurrentOptions = a.Options
	state.FocusedOption = 0
	if a.OptionID != "" {
		state = state.WithSelection(a.Dimension, a.OptionID)
	}
	if a.EnteredDimension != "" {
		state = state.WithHistory(a.EnteredDimension, a.Images)
	}
	return state
}

// restoreCached re-enters a dimension from history. Re-confirming an
// unchanged choice must never re-charge generation credits, so no request
// state is involved at all.
func restoreCached(state converge.SessionState, a converge.RestoreCachedImages) converge.SessionState {
	step, ok := nav.StepForDimension(a.Dimension)
	if !ok {
		return state
	}
	state.Step = step
	if images, cached := state.CachedImages(a.Dimension); cached {
		state.CurrentImages = images
	}
	if len(a.Options) > 0 {
		state.CurrentOptions = a.Options
	}
	if a.Reconfirmed != nil {
		state.LockedDimensions = relock(state.LockedDimensions, *a.Reconfirmed)
	}
	state.FocusedOption = 0
	state.ErrorMessage = ""
	return state
}

// relock replaces or appends the lock entry for one dimension.
func relock(locked []converge.LockedDimension, entry converge.LockedDimension) []converge.LockedDimension {
	out := converge.CopyLocked(locked)
	for i, ld := range out {
		if ld.Type == entry.Type {
			out[i] = entry
			return out
		}
	}
	return append(out, entry)
}

// regenerate replaces the option set for a dimension. It never touches
// locked dimensions: regenerating re-renders options, it does not commit.
func regenerate(state converge.SessionState, a converge.RegenerateSuccess) converge.SessionState {
	state = settle(state)
	state = state.WithRegenerationCount(a.Dimension, state.RegenerationCounts[a.Dimension]+1)
	state = state.WithHistory(a.Dimension, a.Images)
	state.CurrentImages = a.Images
	return state
}

// resume atomically replaces the live session with the stashed snapshot.
func resume(state converge.SessionState, a converge.ResumeSession) converge.SessionState {
	if state.PendingResume == nil {
		return state
	}
	snap := *state.PendingResume

	next := converge.InitialState()
	next.SessionID = snap.SessionID
	next.Intent = snap.Intent
	next.AspectRatio = snap.AspectRatio
	if mode, ok := parseMode(snap.Mode); ok {
		next.Mode = mode
	}
	next.Direction = snap.Direction
	next.LockedDimensions = converge.CopyLocked(snap.LockedDimensions)
	for _, ld := range snap.LockedDimensions {
		next = next.WithSelection(ld.Type, ld.OptionID)
	}
	next.ImageHistory = converge.HistoryFromWire(snap.ImageHistory)
	next.RegenerationCounts = converge.CountsFromWire(snap.RegenerationCounts)
	next.FinalFrameURL = snap.FinalFrameURL
	next.UploadedImageURL = snap.UploadedImageURL
	next.DepthMapURL = snap.DepthMapURL
	next.CameraPaths = converge.NormalizeCameraPaths(snap.CameraPaths)
	next.SelectedCameraMotion = snap.SelectedCameraPath
	next.SubjectMotion = snap.SubjectMotion

	if step, ok := converge.ParseStep(snap.CurrentStep); ok && nav.StepOrder(step, next.Mode) >= 0 {
		next.Step = step
	} else {
		next.Step = nav.NextStep(converge.StepStartingPoint, next.Mode)
	}
	if dim, ok := nav.DimensionForStep(next.Step); ok {
		if images, cached := next.ImageHistory[dim]; cached {
			next.CurrentImages = images
		}
		next.CurrentOptions = a.Options
	}
	return next
}

func parseMode(s string) (converge.StartingPointMode, bool) {
	for _, mode := range converge.Modes {
		if s == string(mode) {
			return mode, true
		}
	}
	return "", false
}
