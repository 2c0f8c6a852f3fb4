package converge

// CreditsPrompt is the side-channel state backing the credits-required dialog.
type CreditsPrompt struct {
	Required  int
	Available int
	Operation string
}

// ExpiryPrompt is the side-channel state backing the session-expired dialog.
// Intent carries the original creative intent so a fresh session can reuse it.
type ExpiryPrompt struct {
	Intent string
}

// MaxRegenerations is the per-dimension regeneration cap enforced by the
// presenting layer. The reducer itself only counts.
const MaxRegenerations = 3

// SessionState is the entire client-visible session, owned by the reducer.
// It is replaced wholesale on every transition and never mutated in place;
// concurrency safety follows from single-writer dispatch.
type SessionState struct {
	SessionID   string
	Intent      string
	AspectRatio string

	Step Step
	Mode StartingPointMode

	Direction        string
	LockedDimensions []LockedDimension

	CurrentImages  []GeneratedImage
	CurrentOptions []DimensionOption

	ImageHistory       map[Dimension][]GeneratedImage
	RegenerationCounts map[Dimension]int

	// SelectionHistory remembers the committed option per dimension across
	// back-navigation, after the lock itself is released. It backs the
	// zero-cost restore when an unchanged choice is re-confirmed.
	SelectionHistory map[Dimension]string

	FinalFrameURL           string
	FinalFrameRegenerations int
	UploadedImageURL        string

	DepthMapURL          string
	CameraPaths          []CameraPath
	SelectedCameraMotion string
	CameraMotionFallback bool

	SubjectMotion              string
	SubjectMotionVideoURL      string
	SubjectMotionInputMode     string
	SubjectMotionStartImageURL string

	FinalPrompt string

	Loading          bool
	LoadingOperation string
	ErrorMessage     string

	// RequestToken identifies the in-flight request; zero means idle.
	// The controller owns the actual cancellation handle, the reducer
	// only records that a token was set.
	RequestToken uint64

	PendingResume  *SessionSnapshot
	CreditsModal   *CreditsPrompt
	SessionExpired *ExpiryPrompt

	FocusedOption int
}

// InitialState is the state at application start and after any full reset.
func InitialState() SessionState {
	return SessionState{
		Step:               StepIntent,
		ImageHistory:       map[Dimension][]GeneratedImage{},
		RegenerationCounts: map[Dimension]int{},
		SelectionHistory:   map[Dimension]string{},
	}
}

// HasSession reports whether a remote session is active.
func (s SessionState) HasSession() bool {
	return s.SessionID != ""
}

// LockedOption returns the committed option id for a dimension, if any.
func (s SessionState) LockedOption(dim Dimension) (string, bool) {
	for _, ld := range s.LockedDimensions {
		if ld.Type == dim {
			return ld.OptionID, true
		}
	}
	return "", false
}

// CommittedOption returns the last committed option id for a dimension.
// Unlike LockedOption it survives back-navigation.
func (s SessionState) CommittedOption(dim Dimension) (string, bool) {
	id, ok := s.SelectionHistory[dim]
	return id, ok
}

// CachedImages returns the recorded image set for a dimension, if any.
func (s SessionState) CachedImages(dim Dimension) ([]GeneratedImage, bool) {
	images, ok := s.ImageHistory[dim]
	return images, ok
}

// FocusCount is the number of focusable entries at the current step.
func (s SessionState) FocusCount() int {
	if s.Step == StepCameraMotion {
		return len(s.CameraPaths)
	}
	return len(s.CurrentOptions)
}

func copyImages(in []GeneratedImage) []GeneratedImage {
	if len(in) == 0 {
		return nil
	}
	out := make([]GeneratedImage, len(in))
	copy(out, in)
	return out
}

func copyOptions(in []DimensionOption) []DimensionOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]DimensionOption, len(in))
	copy(out, in)
	return out
}

// CopyLocked clones a locked-dimension list.
func CopyLocked(in []LockedDimension) []LockedDimension {
	if len(in) == 0 {
		return nil
	}
	out := make([]LockedDimension, len(in))
	copy(out, in)
	return out
}

func copyPaths(in []CameraPath) []CameraPath {
	if len(in) == 0 {
		return nil
	}
	out := make([]CameraPath, len(in))
	copy(out, in)
	return out
}

func copyHistory(in map[Dimension][]GeneratedImage) map[Dimension][]GeneratedImage {
	out := make(map[Dimension][]GeneratedImage, len(in))
	for k, v := range in {
		out[k] = copyImages(v)
	}
	return out
}

func copySelections(in map[Dimension]string) map[Dimension]string {
	out := make(map[Dimension]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyCounts(in map[Dimension]int) map[Dimension]int {
	out := make(map[Dimension]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// WithHistory returns the state with its history map replaced by a copy
// holding images for dim. Copy-on-write so prior states stay intact.
func (s SessionState) WithHistory(dim Dimension, images []GeneratedImage) SessionState {
	next := copyHistory(s.ImageHistory)
	next[dim] = copyImages(images)
	s.ImageHistory = next
	return s
}

// WithSelection returns the state with the committed option for dim replaced.
func (s SessionState) WithSelection(dim Dimension, optionID string) SessionState {
	next := copySelections(s.SelectionHistory)
	next[dim] = optionID
	s.SelectionHistory = next
	return s
}

// WithRegenerationCount returns the state with the count for dim replaced.
func (s SessionState) WithRegenerationCount(dim Dimension, n int) SessionState {
	next := copyCounts(s.RegenerationCounts)
	next[dim] = n
	s.RegenerationCounts = next
	return s
}
