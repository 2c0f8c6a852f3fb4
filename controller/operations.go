package controller

import (
	"context"
	"strings"

	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/api"
	"github.com/goliatone/go-converge/nav"
)

// SetIntent records the creative intent text.
func (c *Controller) SetIntent(text string) {
	c.dispatch(converge.SetIntent{Intent: strings.TrimSpace(text)})
}

// StartSession opens a new session for the recorded intent.
func (c *Controller) StartSession(ctx context.Context, mode converge.StartingPointMode, aspectRatio, uploadURL string) {
	state := c.State()
	if strings.TrimSpace(state.Intent) == "" {
		c.fail("startSession", converge.CloneSessionError(converge.ErrInvalidStep, "intent required before starting a session", nil, nil))
		return
	}

	reqCtx, token := c.begin(ctx, "startSession")
	res, err := c.client.StartSession(reqCtx, api.StartSessionRequest{
		Intent:      state.Intent,
		AspectRatio: aspectRatio,
		Mode:        mode,
		UploadURL:   uploadURL,
	})
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("startSession", err)
		return
	}
	c.dispatch(converge.StartSessionSuccess{
		SessionID:        res.SessionID,
		Intent:           state.Intent,
		AspectRatio:      aspectRatio,
		Mode:             mode,
		Images:           res.Images,
		Options:          c.optionsOrCatalog(res.Options, mode),
		UploadedImageURL: res.UploadedImageURL,
	})
}

// SelectOption commits a choice for a dimension. Re-confirming the already
// committed option restores the next dimension from cache when possible:
// no request, no new cancellation handle, no credits.
func (c *Controller) SelectOption(ctx context.Context, dimension converge.Dimension, optionID string) {
	state := c.State()
	if !state.HasSession() {
		c.fail("selectOption", converge.ErrNoActiveSession)
		return
	}

	if committed, ok := state.CommittedOption(dimension); ok && committed == optionID {
		if next, ok := nav.NextDimension(dimension); ok {
			if _, cached := state.CachedImages(next); cached {
				c.dispatch(converge.RestoreCachedImages{
					Dimension:   next,
					Options:     c.catalog.OptionsFor(next),
					Reconfirmed: c.lockFromCatalog(dimension, optionID),
				})
				return
			}
		}
	}

	reqCtx, token := c.begin(ctx, "selectOption")
	res, err := c.client.SelectOption(reqCtx, state.SessionID, dimension, optionID)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("selectOption", err)
		return
	}
	c.dispatch(c.selectSuccess(dimension, optionID, res))
}

// selectSuccess resolves the server's target identifier into a step and,
// when dimension-bearing, its dimension with display options.
func (c *Controller) selectSuccess(dimension converge.Dimension, optionID string, res *api.SelectOptionResult) converge.SelectOptionSuccess {
	action := converge.SelectOptionSuccess{
		Dimension: dimension,
		OptionID:  optionID,
		Images:    res.Images,
		Options:   res.Options,
		Locked:    res.LockedDimensions,
		Direction: res.Direction,
	}
	if dim, ok := converge.ParseDimension(res.CurrentDimension); ok {
		action.EnteredDimension = dim
		if step, mapped := nav.StepForDimension(dim); mapped {
			action.Target = step
		}
		if len(action.Options) == 0 {
			action.Options = c.catalog.OptionsFor(dim)
		}
		return action
	}
	if step, ok := converge.ParseStep(res.CurrentDimension); ok {
		action.Target = step
		return action
	}
	// Defensive: an unrecognized target falls back to the local successor.
	if step, ok := nav.StepForDimension(dimension); ok {
		action.Target = nav.NextStep(step, c.State().Mode)
	}
	return action
}

// Regenerate requests a fresh option set for the dimension currently shown.
// The step guard is client-side; the regeneration cap is the server's.
func (c *Controller) Regenerate(ctx context.Context) {
	state := c.State()
	if !state.HasSession() {
		c.fail("regenerate", converge.ErrNoActiveSession)
		return
	}
	dimension, ok := nav.DimensionForStep(state.Step)
	if !ok {
		c.fail("regenerate", converge.CloneSessionError(converge.ErrInvalidStep, "cannot regenerate at this step", nil, nil))
		return
	}

	reqCtx, token := c.begin(ctx, "regenerate")
	res, err := c.client.Regenerate(reqCtx, state.SessionID, dimension)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("regenerate", err)
		return
	}
	c.dispatch(converge.RegenerateSuccess{Dimension: dimension, Images: res.Images})
}

// GoBack navigates one step backward, aborting anything in flight.
func (c *Controller) GoBack() {
	c.abortInflight()
	state := c.State()
	dest := nav.PreviousStep(state.Step, state.Mode)
	c.dispatch(converge.GoBack{Options: c.destinationOptions(dest)})
}

// JumpToStep navigates directly to a target step. The locked-dimension
// subset is computed here, not in the reducer.
func (c *Controller) JumpToStep(target converge.Step) {
	c.abortInflight()
	state := c.State()
	locked := nav.LockedBefore(state.LockedDimensions, target, state.Mode)
	c.dispatch(converge.JumpToStep{
		Target:  target,
		Locked:  locked,
		Options: c.destinationOptions(target),
	})
}

// GenerateFinalFrame renders (or re-renders) the final frame.
func (c *Controller) GenerateFinalFrame(ctx context.Context) {
	state := c.State()
	if !state.HasSession() {
		c.fail("generateFinalFrame", converge.ErrNoActiveSession)
		return
	}

	reqCtx, token := c.begin(ctx, "generateFinalFrame")
	res, err := c.client.GenerateFinalFrame(reqCtx, state.SessionID)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("generateFinalFrame", err)
		return
	}
	c.dispatch(converge.GenerateFinalFrameSuccess{
		URL:         res.FinalFrameURL,
		Regenerated: state.FinalFrameURL != "",
	})
}

// GenerateCameraMotion produces the depth map and camera path presets.
func (c *Controller) GenerateCameraMotion(ctx context.Context) {
	state := c.State()
	if !state.HasSession() {
		c.fail("generateCameraMotion", converge.ErrNoActiveSession)
		return
	}

	reqCtx, token := c.begin(ctx, "generateCameraMotion")
	res, err := c.client.GenerateCameraMotion(reqCtx, state.SessionID)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("generateCameraMotion", err)
		return
	}
	c.dispatch(converge.CameraMotionSuccess{
		DepthMapURL:  res.DepthMapURL,
		Paths:        res.CameraPaths,
		FallbackMode: res.FallbackMode,
	})
}

// SelectCameraMotion commits a camera path.
func (c *Controller) SelectCameraMotion(ctx context.Context, motionID string) {
	state := c.State()
	if !state.HasSession() {
		c.fail("selectCameraMotion", converge.ErrNoActiveSession)
		return
	}

	reqCtx, token := c.begin(ctx, "selectCameraMotion")
	err := c.client.SelectCameraMotion(reqCtx, state.SessionID, motionID)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("selectCameraMotion", err)
		return
	}
	c.dispatch(converge.SelectCameraMotion{MotionID: motionID})
}

// SetSubjectMotion records the subject-motion description locally.
func (c *Controller) SetSubjectMotion(description string) {
	c.dispatch(converge.SetSubjectMotion{Description: description})
}

// GenerateSubjectMotionPreview renders a motion preview for the recorded
// description.
func (c *Controller) GenerateSubjectMotionPreview(ctx context.Context) {
	state := c.State()
	if !state.HasSession() {
		c.fail("generateSubjectMotion", converge.ErrNoActiveSession)
		return
	}
	description := strings.TrimSpace(state.SubjectMotion)
	if description == "" {
		c.fail("generateSubjectMotion", converge.CloneSessionError(converge.ErrInvalidStep, "describe the subject motion first", nil, nil))
		return
	}

	reqCtx, token := c.begin(ctx, "generateSubjectMotion")
	res, err := c.client.GenerateSubjectMotion(reqCtx, state.SessionID, description)
	if !c.settle(token) {
		return
	}
	if err != nil {
		c.fail("generateSubjectMotion", err)
		return
	}
	c.dispatch(converge.SubjectMotionSuccess{
		VideoURL:      res.VideoURL,
		Prompt:        res.Prompt,
		InputMode:     res.InputMode,
		StartImageURL: res.StartImageURL,
	})
}

// SkipSubjectMotion advances past subject motion without a preview.
func (c *Controller) SkipSubjectMotion() {
	c.dispatch(converge.SkipSubjectMotion{})
}

// Finalize assembles the session and returns the full result to the caller
// so downstream flows can use it without re-reading state.
func (c *Controller) Finalize(ctx context.Context) (*api.FinalizeResult, error) {
	state := c.State()
	if !state.HasSession() {
		err := converge.ErrNoActiveSession
		c.fail("finalizeSession", err)
		return nil, err
	}

	reqCtx, token := c.begin(ctx, "finalizeSession")
	res, err := c.client.FinalizeSession(reqCtx, state.SessionID)
	if !c.settle(token) {
		return nil, context.Canceled
	}
	if err != nil {
		c.fail("finalizeSession", err)
		return nil, err
	}
	c.dispatch(converge.FinalizeSuccess{
		FinalPrompt:     res.FinalPrompt,
		Locked:          res.LockedDimensions,
		PreviewImageURL: res.PreviewImageURL,
	})
	return res, nil
}

// CheckActiveSession probes for a resumable session and prompts when one
// exists. Quiet: no loading lifecycle, errors only logged.
func (c *Controller) CheckActiveSession(ctx context.Context) error {
	snap, err := c.client.GetActiveSession(ctx)
	if err != nil {
		c.logger.Warn("active session probe failed: %v", err)
		return err
	}
	if snap != nil {
		c.dispatch(converge.PromptResume{Snapshot: *snap})
	}
	return nil
}

// ResumeSession adopts the stashed snapshot as the live session.
func (c *Controller) ResumeSession() {
	state := c.State()
	if state.PendingResume == nil {
		return
	}
	var options []converge.DimensionOption
	if step, ok := converge.ParseStep(state.PendingResume.CurrentStep); ok {
		options = c.destinationOptions(step)
	}
	c.dispatch(converge.ResumeSession{Options: options})
}

// AbandonAndStartFresh tears down the remote session best-effort and resets
// locally regardless of the remote outcome.
func (c *Controller) AbandonAndStartFresh(ctx context.Context) {
	c.abortInflight()
	state := c.State()

	sessionID := state.SessionID
	if state.PendingResume != nil {
		sessionID = state.PendingResume.SessionID
	}
	if sessionID != "" {
		if _, err := c.client.AbandonSession(ctx, sessionID, true); err != nil {
			c.logger.Warn("remote abandon failed for session %s: %v", sessionID, err)
		}
	}
	c.dispatch(converge.AbandonSession{})
}

// Reset discards the local session without touching the backend.
func (c *Controller) Reset() {
	c.abortInflight()
	c.dispatch(converge.Reset{})
}

// CancelGeneration aborts any in-flight request and returns to idle.
// Idempotent; committed data is untouched.
func (c *Controller) CancelGeneration() {
	c.abortInflight()
	c.dispatch(converge.CancelGeneration{})
}

// MoveFocus moves the keyboard cursor over the current option grid.
func (c *Controller) MoveFocus(dir converge.FocusDirection) {
	c.dispatch(converge.MoveFocus{Direction: dir})
}

// SelectFocused activates the focused entry for the current step.
func (c *Controller) SelectFocused(ctx context.Context) {
	state := c.State()
	idx := state.FocusedOption

	if state.Step == converge.StepCameraMotion {
		if idx >= 0 && idx < len(state.CameraPaths) {
			c.SelectCameraMotion(ctx, state.CameraPaths[idx].ID)
		}
		return
	}
	dimension, ok := nav.DimensionForStep(state.Step)
	if !ok {
		return
	}
	if idx >= 0 && idx < len(state.CurrentOptions) {
		c.SelectOption(ctx, dimension, state.CurrentOptions[idx].ID)
	}
}

// HideCreditsModal dismisses the credits dialog.
func (c *Controller) HideCreditsModal() {
	c.dispatch(converge.HideCreditsModal{})
}

// HideSessionExpiredModal dismisses the expiry dialog and resets.
func (c *Controller) HideSessionExpiredModal() {
	c.dispatch(converge.HideSessionExpiredModal{})
}

// ClearError clears the transient error message.
func (c *Controller) ClearError() {
	c.dispatch(converge.ClearError{})
}

// lockFromCatalog rebuilds a lock entry from the static option tables.
func (c *Controller) lockFromCatalog(dimension converge.Dimension, optionID string) *converge.LockedDimension {
	entry := &converge.LockedDimension{Type: dimension, OptionID: optionID}
	for _, opt := range c.catalog.OptionsFor(dimension) {
		if opt.ID == optionID {
			entry.Label = opt.Label
			if opt.PromptFragment != "" {
				entry.PromptFragments = []string{opt.PromptFragment}
			}
			break
		}
	}
	return entry
}

func (c *Controller) destinationOptions(step converge.Step) []converge.DimensionOption {
	if dim, ok := nav.DimensionForStep(step); ok {
		return c.catalog.OptionsFor(dim)
	}
	return nil
}

func (c *Controller) optionsOrCatalog(options []converge.DimensionOption, mode converge.StartingPointMode) []converge.DimensionOption {
	if len(options) > 0 {
		return options
	}
	start := nav.NextStep(converge.StepStartingPoint, mode)
	return c.destinationOptions(start)
}
