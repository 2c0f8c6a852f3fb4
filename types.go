package converge

import "strings"

// Step is a position in the convergence flow.
type Step string

const (
	StepIntent        Step = "intent"
	StepStartingPoint Step = "starting_point"
	StepDirection     Step = "direction"
	StepMood          Step = "mood"
	StepFraming       Step = "framing"
	StepLighting      Step = "lighting"
	StepFinalFrame    Step = "final_frame"
	StepCameraMotion  Step = "camera_motion"
	StepSubjectMotion Step = "subject_motion"
	StepPreview       Step = "preview"
	StepComplete      Step = "complete"
)

// Steps lists every member of the step enumeration in canonical long-sequence order.
var Steps = []Step{
	StepIntent,
	StepStartingPoint,
	StepDirection,
	StepMood,
	StepFraming,
	StepLighting,
	StepFinalFrame,
	StepCameraMotion,
	StepSubjectMotion,
	StepPreview,
	StepComplete,
}

// Dimension is one axis of stylistic choice.
type Dimension string

const (
	DimensionDirection    Dimension = "direction"
	DimensionMood         Dimension = "mood"
	DimensionFraming      Dimension = "framing"
	DimensionLighting     Dimension = "lighting"
	DimensionCameraMotion Dimension = "camera_motion"
)

// Dimensions lists every dimension in selection order.
var Dimensions = []Dimension{
	DimensionDirection,
	DimensionMood,
	DimensionFraming,
	DimensionLighting,
	DimensionCameraMotion,
}

// StartingPointMode selects which step sequence a session walks.
type StartingPointMode string

const (
	ModeUpload   StartingPointMode = "upload"
	ModeQuick    StartingPointMode = "quick"
	ModeConverge StartingPointMode = "converge"
)

// Modes lists every starting-point mode.
var Modes = []StartingPointMode{ModeUpload, ModeQuick, ModeConverge}

// ParseStep normalizes a wire step identifier.
func ParseStep(s string) (Step, bool) {
	step := Step(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Steps {
		if step == known {
			return step, true
		}
	}
	return "", false
}

// ParseDimension normalizes a wire dimension identifier.
func ParseDimension(s string) (Dimension, bool) {
	dim := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if dim == known {
			return dim, true
		}
	}
	return "", false
}

// GeneratedImage is one generated option rendering.
type GeneratedImage struct {
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
	OptionID string `json:"option_id,omitempty" yaml:"option_id,omitempty"`
}

// DimensionOption is one selectable option within a dimension's fixed set.
type DimensionOption struct {
	ID             string `json:"id" yaml:"id"`
	Label          string `json:"label" yaml:"label"`
	PromptFragment string `json:"prompt_fragment,omitempty" yaml:"prompt_fragment,omitempty"`
}

// LockedDimension is a committed choice for one dimension.
type LockedDimension struct {
	Type            Dimension `json:"type"`
	OptionID        string    `json:"option_id"`
	Label           string    `json:"label,omitempty"`
	PromptFragments []string  `json:"prompt_fragments,omitempty"`
}

// CameraKeyframe is one sample along a camera path.
type CameraKeyframe struct {
	Time     float64    `json:"time"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation,omitempty"`
}

// CameraPath describes one camera motion preset returned by the remote API.
type CameraPath struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description,omitempty"`
	Keyframes   []CameraKeyframe `json:"keyframes,omitempty"`
}

// identityRotation is the quaternion applied to legacy keyframes that carry no rotation.
var identityRotation = [4]float64{1, 0, 0, 0}

// NormalizeCameraPath fills identity rotations on legacy keyframes.
// Applied once at the data-model boundary so downstream code only sees
// the canonical shape.
func NormalizeCameraPath(p CameraPath) CameraPath {
	if len(p.Keyframes) == 0 {
		return p
	}
	frames := make([]CameraKeyframe, len(p.Keyframes))
	copy(frames, p.Keyframes)
	for i, kf := range frames {
		if kf.Rotation == ([4]float64{}) {
			frames[i].Rotation = identityRotation
		}
	}
	p.Keyframes = frames
	return p
}

// NormalizeCameraPaths normalizes a slice of paths on ingestion.
func NormalizeCameraPaths(paths []CameraPath) []CameraPath {
	if len(paths) == 0 {
		return nil
	}
	out := make([]CameraPath, len(paths))
	for i, p := range paths {
		out[i] = NormalizeCameraPath(p)
	}
	return out
}

// SessionSnapshot is the wire representation of a previously persisted session,
// as returned by getActiveSession or attached to a conflicting-session error.
type SessionSnapshot struct {
	SessionID          string                      `json:"session_id"`
	Intent             string                      `json:"intent,omitempty"`
	AspectRatio        string                      `json:"aspect_ratio,omitempty"`
	Mode               string                      `json:"starting_point_mode,omitempty"`
	CurrentStep        string                      `json:"current_step"`
	Direction          string                      `json:"direction,omitempty"`
	LockedDimensions   []LockedDimension           `json:"locked_dimensions,omitempty"`
	ImageHistory       map[string][]GeneratedImage `json:"image_history,omitempty"`
	RegenerationCounts map[string]int              `json:"regeneration_counts,omitempty"`
	FinalFrameURL      string                      `json:"final_frame_url,omitempty"`
	UploadedImageURL   string                      `json:"uploaded_image_url,omitempty"`
	DepthMapURL        string                      `json:"depth_map_url,omitempty"`
	CameraPaths        []CameraPath                `json:"camera_paths,omitempty"`
	SelectedCameraPath string                      `json:"selected_camera_path,omitempty"`
	SubjectMotion      string                      `json:"subject_motion,omitempty"`
	UpdatedAt          string                      `json:"updated_at,omitempty"`
}

// HistoryFromWire converts a wire image-history map onto dimension keys,
// dropping entries that do not name a known dimension.
func HistoryFromWire(wire map[string][]GeneratedImage) map[Dimension][]GeneratedImage {
	if len(wire) == 0 {
		return map[Dimension][]GeneratedImage{}
	}
	out := make(map[Dimension][]GeneratedImage, len(wire))
	for key, images := range wire {
		dim, ok := ParseDimension(key)
		if !ok {
			continue
		}
		out[dim] = copyImages(images)
	}
	return out
}

// CountsFromWire converts a wire regeneration-count map onto dimension keys.
func CountsFromWire(wire map[string]int) map[Dimension]int {
	if len(wire) == 0 {
		return map[Dimension]int{}
	}
	out := make(map[Dimension]int, len(wire))
	for key, n := range wire {
		dim, ok := ParseDimension(key)
		if !ok || n < 0 {
			continue
		}
		out[dim] = n
	}
	return out
}
