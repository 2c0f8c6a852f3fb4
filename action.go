package converge

// Action is a single state transition request. Actions are dispatched into
// the reducer one at a time; unknown kinds are a no-op.
type Action interface {
	Kind() string
}

// Action kind identifiers, useful for logging and lifecycle hooks.
const (
	KindSetIntent                 = "set_intent"
	KindRequestStarted            = "request_started"
	KindRequestFailed             = "request_failed"
	KindStartSessionSuccess       = "start_session_success"
	KindSelectOptionSuccess       = "select_option_success"
	KindRestoreCachedImages       = "restore_cached_images"
	KindRegenerateSuccess         = "regenerate_success"
	KindGoBack                    = "go_back"
	KindJumpToStep                = "jump_to_step"
	KindCancelGeneration          = "cancel_generation"
	KindPromptResume              = "prompt_resume"
	KindResumeSession             = "resume_session"
	KindAbandonSession            = "abandon_session"
	KindReset                     = "reset"
	KindShowCreditsModal          = "show_credits_modal"
	KindHideCreditsModal          = "hide_credits_modal"
	KindShowSessionExpiredModal   = "show_session_expired_modal"
	KindHideSessionExpiredModal   = "hide_session_expired_modal"
	KindMoveFocus                 = "move_focus"
	KindGenerateFinalFrameSuccess = "generate_final_frame_success"
	KindCameraMotionSuccess       = "camera_motion_success"
	KindSelectCameraMotion        = "select_camera_motion"
	KindSetSubjectMotion          = "set_subject_motion"
	KindSubjectMotionSuccess      = "subject_motion_success"
	KindSkipSubjectMotion         = "skip_subject_motion"
	KindFinalizeSuccess           = "finalize_success"
	KindClearError                = "clear_error"
)

// SetIntent records the creative intent text before a session exists.
type SetIntent struct {
	Intent string
}

func (SetIntent) Kind() string { return KindSetIntent }

// RequestStarted marks a remote operation in flight. Token identifies the
// cancellation handle owned by the controller.
type RequestStarted struct {
	Operation string
	Token     uint64
}

func (RequestStarted) Kind() string { return KindRequestStarted }

// RequestFailed surfaces a classified failure message. Business data is
// left untouched.
type RequestFailed struct {
	Operation string
	Message   string
}

func (RequestFailed) Kind() string { return KindRequestFailed }

// StartSessionSuccess adopts a freshly created session. This is the only
// transition allowed to wholesale-reset accumulated choices without an
// explicit reset.
type StartSessionSuccess struct {
	SessionID        string
	Intent           string
	AspectRatio      string
	Mode             StartingPointMode
	Images           []GeneratedImage
	Options          []DimensionOption
	UploadedImageURL string
}

func (StartSessionSuccess) Kind() string { return KindStartSessionSuccess }

// SelectOptionSuccess commits a dimension choice and advances to the target
// the server decided on, which may short-circuit past remaining dimensions.
type SelectOptionSuccess struct {
	// Dimension is the dimension the option was selected for.
	Dimension Dimension
	OptionID  string
	// Target is the step the server advanced the session to.
	Target Step
	// EnteredDimension is set when Target is a dimension-bearing step.
	EnteredDimension Dimension
	Images           []GeneratedImage
	Options          []DimensionOption
	Locked           []LockedDimension
	Direction        string
}

func (SelectOptionSuccess) Kind() string { return KindSelectOptionSuccess }

// RestoreCachedImages re-enters a dimension from history at zero generation
// cost, used when the committed option is re-confirmed unchanged.
type RestoreCachedImages struct {
	Dimension Dimension
	Options   []DimensionOption
	// Reconfirmed re-establishes the lock for the dimension whose unchanged
	// choice triggered the restore.
	Reconfirmed *LockedDimension
}

func (RestoreCachedImages) Kind() string { return KindRestoreCachedImages }

// RegenerateSuccess replaces the option set for a dimension without
// committing a choice.
type RegenerateSuccess struct {
	Dimension Dimension
	Images    []GeneratedImage
}

func (RegenerateSuccess) Kind() string { return KindRegenerateSuccess }

// GoBack navigates to the previous step under the active mode.
type GoBack struct {
	// Options for the destination dimension, when the destination is a
	// dimension-bearing step. Supplied by the controller from the catalog.
	Options []DimensionOption
}

func (GoBack) Kind() string { return KindGoBack }

// JumpToStep navigates directly to a target step. Locked must already be
// filtered to dimensions preceding the target; that is the caller's job.
type JumpToStep struct {
	Target  Step
	Locked  []LockedDimension
	Options []DimensionOption
}

func (JumpToStep) Kind() string { return KindJumpToStep }

// CancelGeneration returns the machine to idle, keeping committed data.
type CancelGeneration struct{}

func (CancelGeneration) Kind() string { return KindCancelGeneration }

// PromptResume stashes a foreign session snapshot without touching live state.
type PromptResume struct {
	Snapshot SessionSnapshot
}

func (PromptResume) Kind() string { return KindPromptResume }

// ResumeSession replaces live session fields with the stashed snapshot.
type ResumeSession struct {
	// Options for the dimension owning the resumed step, from the catalog.
	Options []DimensionOption
}

func (ResumeSession) Kind() string { return KindResumeSession }

// AbandonSession discards the stash and resets to the initial state.
type AbandonSession struct{}

func (AbandonSession) Kind() string { return KindAbandonSession }

// Reset discards everything and returns to the initial state.
type Reset struct{}

func (Reset) Kind() string { return KindReset }

// ShowCreditsModal raises the credits-required dialog.
type ShowCreditsModal struct {
	Required  int
	Available int
	Operation string
}

func (ShowCreditsModal) Kind() string { return KindShowCreditsModal }

// HideCreditsModal dismisses the credits-required dialog.
type HideCreditsModal struct{}

func (HideCreditsModal) Kind() string { return KindHideCreditsModal }

// ShowSessionExpiredModal raises the session-expired dialog carrying the
// original intent for reuse.
type ShowSessionExpiredModal struct {
	Intent string
}

func (ShowSessionExpiredModal) Kind() string { return KindShowSessionExpiredModal }

// HideSessionExpiredModal dismisses the dialog and fully resets; an expired
// session cannot be continued.
type HideSessionExpiredModal struct{}

func (HideSessionExpiredModal) Kind() string { return KindHideSessionExpiredModal }

// FocusDirection is a 2-D arrow movement over the option grid.
type FocusDirection string

const (
	FocusLeft  FocusDirection = "left"
	FocusRight FocusDirection = "right"
	FocusUp    FocusDirection = "up"
	FocusDown  FocusDirection = "down"
)

// MoveFocus moves the keyboard cursor over the current option set.
type MoveFocus struct {
	Direction FocusDirection
}

func (MoveFocus) Kind() string { return KindMoveFocus }

// GenerateFinalFrameSuccess records a generated or regenerated final frame.
type GenerateFinalFrameSuccess struct {
	URL         string
	Regenerated bool
}

func (GenerateFinalFrameSuccess) Kind() string { return KindGenerateFinalFrameSuccess }

// CameraMotionSuccess stores the depth map and camera path presets for the
// camera-motion step.
type CameraMotionSuccess struct {
	DepthMapURL  string
	Paths        []CameraPath
	FallbackMode bool
}

func (CameraMotionSuccess) Kind() string { return KindCameraMotionSuccess }

// SelectCameraMotion commits a camera path and advances to subject motion.
type SelectCameraMotion struct {
	MotionID string
}

func (SelectCameraMotion) Kind() string { return KindSelectCameraMotion }

// SetSubjectMotion records the subject-motion description locally.
type SetSubjectMotion struct {
	Description string
}

func (SetSubjectMotion) Kind() string { return KindSetSubjectMotion }

// SubjectMotionSuccess stores the rendered subject-motion preview.
type SubjectMotionSuccess struct {
	VideoURL      string
	Prompt        string
	InputMode     string
	StartImageURL string
}

func (SubjectMotionSuccess) Kind() string { return KindSubjectMotionSuccess }

// SkipSubjectMotion advances past subject motion without a preview.
type SkipSubjectMotion struct{}

func (SkipSubjectMotion) Kind() string { return KindSkipSubjectMotion }

// FinalizeSuccess completes the session with the assembled prompt.
type FinalizeSuccess struct {
	FinalPrompt     string
	Locked          []LockedDimension
	PreviewImageURL string
}

func (FinalizeSuccess) Kind() string { return KindFinalizeSuccess }

// ClearError clears the transient error message.
type ClearError struct{}

func (ClearError) Kind() string { return KindClearError }
