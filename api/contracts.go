// Package api defines the remote creative API this core consumes. The
// backend owns generation, credit accounting and session persistence; this
// package only fixes the typed operation contracts and the structured error
// envelope they fail with.
package api

import (
	"context"

	"github.com/goliatone/go-converge"
)

// StartSessionRequest opens a new convergence session.
type StartSessionRequest struct {
	Intent      string                     `json:"intent"`
	AspectRatio string                     `json:"aspect_ratio,omitempty"`
	Mode        converge.StartingPointMode `json:"starting_point_mode,omitempty"`
	UploadURL   string                     `json:"upload_url,omitempty"`
}

// StartSessionResult is the payload of a successful session start.
type StartSessionResult struct {
	SessionID        string                     `json:"session_id"`
	Images           []converge.GeneratedImage  `json:"images"`
	Options          []converge.DimensionOption `json:"options"`
	UploadedImageURL string                     `json:"uploaded_image_url,omitempty"`
	EstimatedCost    int                        `json:"estimated_cost"`
}

// SelectOptionResult advances the session after a committed choice. The
// server decides the next dimension and may short-circuit past remaining
// dimensions; its locked-dimension list is authoritative.
type SelectOptionResult struct {
	Images           []converge.GeneratedImage  `json:"images"`
	CurrentDimension string                     `json:"current_dimension"`
	LockedDimensions []converge.LockedDimension `json:"locked_dimensions"`
	Options          []converge.DimensionOption `json:"options,omitempty"`
	Direction        string                     `json:"direction,omitempty"`
	CreditsConsumed  int                        `json:"credits_consumed"`
}

// RegenerateResult carries a fresh option set for the current dimension.
type RegenerateResult struct {
	Images                 []converge.GeneratedImage `json:"images"`
	RemainingRegenerations int                       `json:"remaining_regenerations"`
	CreditsConsumed        int                       `json:"credits_consumed"`
}

// FinalFrameResult carries the generated final frame.
type FinalFrameResult struct {
	FinalFrameURL   string `json:"final_frame_url"`
	CreditsConsumed int    `json:"credits_consumed"`
}

// CameraMotionResult carries the depth map and camera path presets.
// DepthMapURL is empty in fallback mode.
type CameraMotionResult struct {
	DepthMapURL     string                `json:"depth_map_url,omitempty"`
	CameraPaths     []converge.CameraPath `json:"camera_paths"`
	FallbackMode    bool                  `json:"fallback_mode"`
	CreditsConsumed int                   `json:"credits_consumed"`
}

// SubjectMotionResult carries the rendered subject-motion preview.
type SubjectMotionResult struct {
	VideoURL        string `json:"video_url"`
	Prompt          string `json:"prompt"`
	InputMode       string `json:"input_mode"`
	StartImageURL   string `json:"start_image_url,omitempty"`
	CreditsConsumed int    `json:"credits_consumed"`
}

// FinalizeResult is the assembled session outcome, returned to the caller
// directly so downstream flows can use it without re-reading state.
type FinalizeResult struct {
	FinalPrompt          string                     `json:"final_prompt"`
	LockedDimensions     []converge.LockedDimension `json:"locked_dimensions"`
	PreviewImageURL      string                     `json:"preview_image_url"`
	CameraMotion         string                     `json:"camera_motion,omitempty"`
	SubjectMotion        string                     `json:"subject_motion,omitempty"`
	TotalCreditsConsumed int                        `json:"total_credits_consumed"`
	GenerationCosts      map[string]int             `json:"generation_costs,omitempty"`
}

// AbandonResult confirms remote teardown.
type AbandonResult struct {
	Abandoned     bool `json:"abandoned"`
	ImagesDeleted int  `json:"images_deleted"`
}

// Client is the remote creative API. All operations honor context
// cancellation and fail with a structured application error carrying one of
// the closed converge error codes, or a transport-level error otherwise.
type Client interface {
	StartSession(ctx context.Context, req StartSessionRequest) (*StartSessionResult, error)
	SelectOption(ctx context.Context, sessionID string, dimension converge.Dimension, optionID string) (*SelectOptionResult, error)
	Regenerate(ctx context.Context, sessionID string, dimension converge.Dimension) (*RegenerateResult, error)
	GenerateFinalFrame(ctx context.Context, sessionID string) (*FinalFrameResult, error)
	GenerateCameraMotion(ctx context.Context, sessionID string) (*CameraMotionResult, error)
	SelectCameraMotion(ctx context.Context, sessionID, motionID string) error
	GenerateSubjectMotion(ctx context.Context, sessionID, description string) (*SubjectMotionResult, error)
	FinalizeSession(ctx context.Context, sessionID string) (*FinalizeResult, error)
	GetActiveSession(ctx context.Context) (*converge.SessionSnapshot, error)
	AbandonSession(ctx context.Context, sessionID string, deleteImages bool) (*AbandonResult, error)
}
