package reducer_test

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/reducer"
)

func TestInitialState(t *testing.T) {
	state := converge.InitialState()

	if state.Step != converge.StepIntent {
		t.Fatalf("a fresh machine opens at intent, got %s", state.Step)
	}
	if state.HasSession() {
		t.Fatal("no session exists yet")
	}
	if len(state.ImageHistory) != 0 || len(state.RegenerationCounts) != 0 || len(state.SelectionHistory) != 0 {
		t.Fatal("history maps start empty")
	}
	if state.Loading || state.LoadingOperation != "" || state.RequestToken != 0 {
		t.Fatal("no request is in flight initially")
	}
	if state.FocusedOption != 0 {
		t.Fatalf("focus starts at the first option, got %d", state.FocusedOption)
	}
	if state.ErrorMessage != "" || state.CreditsModal != nil || state.SessionExpired != nil || state.PendingResume != nil {
		t.Fatal("no error or prompt state initially")
	}
}

func images(ids ...string) []converge.GeneratedImage {
	out := make([]converge.GeneratedImage, 0, len(ids))
	for _, id := range ids {
		out = append(out, converge.GeneratedImage{ID: id, URL: "https://img.test/" + id})
	}
	return out
}

func options(ids ...string) []converge.DimensionOption {
	out := make([]converge.DimensionOption, 0, len(ids))
	for _, id := range ids {
		out = append(out, converge.DimensionOption{ID: id, Label: id})
	}
	return out
}

func startedSession(t *testing.T, mode converge.StartingPointMode) converge.SessionState {
	t.Helper()
	state := reducer.Reduce(converge.InitialState(), converge.SetIntent{Intent: "a lone lighthouse"})
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "startSession", Token: 1})
	return reducer.Reduce(state, converge.StartSessionSuccess{
		SessionID: "ses-1",
		Intent:    "a lone lighthouse",
		Mode:      mode,
		Images:    images("i1", "i2", "i3", "i4"),
		Options:   options("o1", "o2", "o3", "o4"),
	})
}

func TestRequestLifecycle(t *testing.T) {
	state := converge.InitialState()
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "startSession", Token: 7})

	if !state.Loading || state.LoadingOperation != "startSession" || state.RequestToken != 7 {
		t.Fatalf("request start not recorded: %+v", state)
	}

	state = reducer.Reduce(state, converge.RequestFailed{Operation: "startSession", Message: "boom"})
	if state.Loading || state.RequestToken != 0 {
		t.Fatal("failure must settle the request state")
	}
	if state.ErrorMessage != "boom" {
		t.Fatalf("expected error message, got %q", state.ErrorMessage)
	}

	state = reducer.Reduce(state, converge.ClearError{})
	if state.ErrorMessage != "" {
		t.Fatal("clear error must empty the message")
	}
}

func TestStartSessionConvergeMode(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)

	if state.SessionID != "ses-1" {
		t.Fatalf("session id not adopted: %q", state.SessionID)
	}
	if state.Step != converge.StepDirection {
		t.Fatalf("converge mode must open at direction, got %s", state.Step)
	}
	if state.Loading || state.RequestToken != 0 {
		t.Fatal("success must leave the machine idle")
	}
	cached, ok := state.CachedImages(converge.DimensionDirection)
	if !ok || len(cached) != 4 {
		t.Fatal("opening images must be recorded under the opening dimension")
	}
}

func TestStartSessionWithoutMode(t *testing.T) {
	state := startedSession(t, "")
	if state.Step != converge.StepStartingPoint {
		t.Fatalf("no mode yet means starting point, got %s", state.Step)
	}
	if len(state.ImageHistory) != 0 {
		t.Fatal("no dimension entered, nothing to record")
	}
}

func TestStartSessionDiscardsPriorSession(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o1",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1"),
		Locked:           []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o1"}},
	})

	state = reducer.Reduce(state, converge.StartSessionSuccess{
		SessionID: "ses-2",
		Intent:    "something else",
		Mode:      converge.ModeQuick,
		Images:    images("q1"),
	})
	if state.SessionID != "ses-2" || len(state.LockedDimensions) != 0 {
		t.Fatal("a new session must not inherit prior choices")
	}
	if state.Step != converge.StepFinalFrame {
		t.Fatalf("quick mode opens at final frame, got %s", state.Step)
	}
}

func TestSelectOptionAdvancesAndLocks(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	action := converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o2",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1", "m2", "m3", "m4"),
		Options:          options("calm", "tense"),
		Locked:           []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o2"}},
		Direction:        "cinematic",
	}

	next := reducer.Reduce(state, action)
	if next.Step != converge.StepMood {
		t.Fatalf("expected mood, got %s", next.Step)
	}
	if got, ok := next.LockedOption(converge.DimensionDirection); !ok || got != "o2" {
		t.Fatal("direction must be locked to o2")
	}
	if next.Direction != "cinematic" {
		t.Fatalf("direction label not adopted: %q", next.Direction)
	}
	if next.FocusedOption != 0 {
		t.Fatal("focus resets on entry")
	}
	cached, ok := next.CachedImages(converge.DimensionMood)
	if !ok || len(cached) != 4 {
		t.Fatal("entered dimension's images must be recorded")
	}

	// Replaying the same committed transition yields the same state.
	again := reducer.Reduce(next, action)
	if again.Step != next.Step || len(again.LockedDimensions) != len(next.LockedDimensions) {
		t.Fatal("re-selection of the committed option must be idempotent")
	}
	if got, _ := again.LockedOption(converge.DimensionDirection); got != "o2" {
		t.Fatal("lock must be unchanged on replay")
	}
}

func TestSelectOptionServerLockListIsAuthoritative(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension: converge.DimensionDirection,
		OptionID:  "o1",
		Target:    converge.StepMood,
		Locked: []converge.LockedDimension{
			{Type: converge.DimensionDirection, OptionID: "o1"},
			{Type: converge.DimensionMood, OptionID: "server-decided"},
		},
	})
	if got, ok := state.LockedOption(converge.DimensionMood); !ok || got != "server-decided" {
		t.Fatal("the server's locked list replaces the local one wholesale")
	}
}

func TestRestoreCachedImages(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = state.WithHistory(converge.DimensionMood, images("m1", "m2"))
	state.ErrorMessage = "stale"

	next := reducer.Reduce(state, converge.RestoreCachedImages{
		Dimension: converge.DimensionMood,
		Options:   options("calm", "tense"),
	})
	if next.Step != converge.StepMood {
		t.Fatalf("expected mood, got %s", next.Step)
	}
	if len(next.CurrentImages) != 2 || next.CurrentImages[0].ID != "m1" {
		t.Fatal("cached images must become current")
	}
	if next.ErrorMessage != "" {
		t.Fatal("restore clears the error message")
	}
	if next.FocusedOption != 0 {
		t.Fatal("focus resets on entry")
	}
}

func TestSelectionHistorySurvivesGoBack(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o1",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1"),
		Locked:           []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o1"}},
	})

	state = reducer.Reduce(state, converge.GoBack{})
	if _, ok := state.LockedOption(converge.DimensionDirection); ok {
		t.Fatal("the lock releases on back-navigation")
	}
	if got, ok := state.CommittedOption(converge.DimensionDirection); !ok || got != "o1" {
		t.Fatal("the committed choice must survive back-navigation")
	}
}

func TestRestoreCachedImagesRelocks(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = state.WithHistory(converge.DimensionMood, images("m1"))

	state = reducer.Reduce(state, converge.RestoreCachedImages{
		Dimension:   converge.DimensionMood,
		Reconfirmed: &converge.LockedDimension{Type: converge.DimensionDirection, OptionID: "o1", Label: "O1"},
	})
	if got, ok := state.LockedOption(converge.DimensionDirection); !ok || got != "o1" {
		t.Fatal("the re-confirmed dimension locks again")
	}
}

func TestRegenerateCountsAndHistory(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	before := state.RegenerationCounts

	state = reducer.Reduce(state, converge.RegenerateSuccess{
		Dimension: converge.DimensionDirection,
		Images:    images("r1", "r2", "r3", "r4"),
	})
	if state.RegenerationCounts[converge.DimensionDirection] != 1 {
		t.Fatalf("count must increment, got %d", state.RegenerationCounts[converge.DimensionDirection])
	}
	if len(before) != 0 {
		t.Fatal("prior state's count map must be untouched")
	}
	if state.CurrentImages[0].ID != "r1" {
		t.Fatal("regenerated images replace the current set")
	}
	cached, _ := state.CachedImages(converge.DimensionDirection)
	if cached[0].ID != "r1" {
		t.Fatal("history must hold the regenerated set")
	}

	state = reducer.Reduce(state, converge.RegenerateSuccess{
		Dimension: converge.DimensionDirection,
		Images:    images("r5"),
	})
	if state.RegenerationCounts[converge.DimensionDirection] != 2 {
		t.Fatal("counts are monotonic within a session")
	}
	if got, ok := state.LockedOption(converge.DimensionDirection); ok {
		t.Fatalf("regeneration must not lock anything, found %s", got)
	}
}

func TestGoBackUnlocksDestinationDimension(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o1",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1"),
		Locked:           []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o1"}},
	})
	state = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension:        converge.DimensionMood,
		OptionID:         "calm",
		Target:           converge.StepFraming,
		EnteredDimension: converge.DimensionFraming,
		Images:           images("f1"),
		Locked: []converge.LockedDimension{
			{Type: converge.DimensionDirection, OptionID: "o1"},
			{Type: converge.DimensionMood, OptionID: "calm"},
		},
	})

	state = reducer.Reduce(state, converge.GoBack{Options: options("calm", "tense")})
	if state.Step != converge.StepMood {
		t.Fatalf("expected mood, got %s", state.Step)
	}
	if _, ok := state.LockedOption(converge.DimensionMood); ok {
		t.Fatal("the destination dimension must be unlocked")
	}
	if got, ok := state.LockedOption(converge.DimensionDirection); !ok || got != "o1" {
		t.Fatal("dimensions before the destination stay locked")
	}
	if len(state.CurrentImages) != 1 || state.CurrentImages[0].ID != "m1" {
		t.Fatal("the destination's cached images must be restored")
	}
}

func TestGoBackAtFirstStepIsNoop(t *testing.T) {
	state := converge.InitialState()
	next := reducer.Reduce(state, converge.GoBack{})
	if next.Step != converge.StepIntent {
		t.Fatalf("expected intent, got %s", next.Step)
	}
}

func TestGoBackSettlesInFlightRequest(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "regenerate", Token: 2})

	next := reducer.Reduce(state, converge.GoBack{})
	if next.Step != converge.StepStartingPoint {
		t.Fatalf("expected starting point, got %s", next.Step)
	}
	if next.Loading || next.LoadingOperation != "" || next.RequestToken != 0 {
		t.Fatalf("back-navigation must settle the request state: %+v", next)
	}

	// Even when there is nowhere to go, the aborted request must settle.
	first := reducer.Reduce(converge.InitialState(), converge.RequestStarted{Operation: "startSession", Token: 1})
	first = reducer.Reduce(first, converge.GoBack{})
	if first.Loading || first.RequestToken != 0 {
		t.Fatal("go-back at the first step must still settle the request state")
	}
}

func TestJumpToStepSettlesInFlightRequest(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "selectOption", Token: 4})

	next := reducer.Reduce(state, converge.JumpToStep{Target: converge.StepDirection})
	if next.Loading || next.LoadingOperation != "" || next.RequestToken != 0 {
		t.Fatalf("jump must settle the request state: %+v", next)
	}

	rejected := reducer.Reduce(state, converge.JumpToStep{Target: converge.Step("nope")})
	if rejected.Loading || rejected.RequestToken != 0 {
		t.Fatal("a rejected jump must still settle the request state")
	}
	if rejected.Step != state.Step {
		t.Fatal("a rejected jump must not move the machine")
	}
}

func TestGoBackReselectRoundTripRestoresState(t *testing.T) {
	action := converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o2",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1", "m2", "m3", "m4"),
		Options:          options("calm", "tense"),
		Locked:           []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o2"}},
		Direction:        "cinematic",
	}

	committed := reducer.Reduce(startedSession(t, converge.ModeConverge), action)
	back := reducer.Reduce(committed, converge.GoBack{Options: options("o1", "o2", "o3", "o4")})
	replayed := reducer.Reduce(back, action)

	if !reflect.DeepEqual(replayed, committed) {
		t.Fatalf("re-selecting after go-back must restore every field\n got: %+v\nwant: %+v", replayed, committed)
	}
}

func TestGoBackToStartingPointKeepsHistoryAndCounts(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.RegenerateSuccess{
		Dimension: converge.DimensionDirection,
		Images:    images("r1"),
	})

	state = reducer.Reduce(state, converge.GoBack{})
	if state.Step != converge.StepStartingPoint {
		t.Fatalf("expected starting point, got %s", state.Step)
	}
	if state.Mode != "" {
		t.Fatal("the mode choice reopens")
	}
	if state.SessionID != "ses-1" {
		t.Fatal("the session survives the walk restart")
	}
	if state.RegenerationCounts[converge.DimensionDirection] != 1 {
		t.Fatal("regeneration counts never decrease within a session")
	}
	if _, ok := state.CachedImages(converge.DimensionDirection); !ok {
		t.Fatal("image history survives the walk restart")
	}
	if state.CurrentImages != nil || state.CurrentOptions != nil {
		t.Fatal("the option display clears at the mode choice")
	}
}

func TestJumpToStepResetsFuturePayloads(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state.Step = converge.StepSubjectMotion
	state.FinalFrameURL = "https://img.test/final"
	state.FinalFrameRegenerations = 2
	state.DepthMapURL = "https://img.test/depth"
	state.CameraPaths = []converge.CameraPath{{ID: "orbit"}}
	state.SelectedCameraMotion = "orbit"
	state.SubjectMotion = "waves crash"
	state.FinalPrompt = "assembled"
	state.LockedDimensions = []converge.LockedDimension{
		{Type: converge.DimensionDirection, OptionID: "o1"},
		{Type: converge.DimensionMood, OptionID: "calm"},
	}

	action := converge.JumpToStep{
		Target:  converge.StepMood,
		Locked:  []converge.LockedDimension{{Type: converge.DimensionDirection, OptionID: "o1"}},
		Options: options("calm", "tense"),
	}
	next := reducer.Reduce(state, action)

	if next.Step != converge.StepMood {
		t.Fatalf("expected mood, got %s", next.Step)
	}
	if next.FinalFrameURL != "" || next.FinalFrameRegenerations != 0 {
		t.Fatal("final frame is in the future and must reset")
	}
	if next.DepthMapURL != "" || next.CameraPaths != nil || next.SelectedCameraMotion != "" {
		t.Fatal("camera motion is in the future and must reset")
	}
	if next.SubjectMotion != "" {
		t.Fatal("subject motion is in the future and must reset")
	}
	if next.FinalPrompt != "" {
		t.Fatal("the assembled prompt is in the future and must reset")
	}
	if _, ok := next.LockedOption(converge.DimensionMood); ok {
		t.Fatal("mood must be unlocked at its own step")
	}

	// Jumping again to the same target changes nothing.
	again := reducer.Reduce(next, action)
	if again.Step != next.Step || len(again.LockedDimensions) != len(next.LockedDimensions) {
		t.Fatal("jump must be idempotent")
	}
}

func TestJumpToUnreachableStepIsNoop(t *testing.T) {
	state := startedSession(t, converge.ModeUpload)
	next := reducer.Reduce(state, converge.JumpToStep{Target: converge.StepMood})
	if next.Step != state.Step {
		t.Fatal("a step outside the mode's sequence must be rejected")
	}
}

func TestCancelGenerationKeepsCommittedData(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "regenerate", Token: 9})

	next := reducer.Reduce(state, converge.CancelGeneration{})
	if next.Loading || next.RequestToken != 0 {
		t.Fatal("cancel must settle the request state")
	}
	if next.SessionID != "ses-1" || next.Step != converge.StepDirection {
		t.Fatal("cancel must not disturb committed data")
	}

	// Cancel is idempotent.
	again := reducer.Reduce(next, converge.CancelGeneration{})
	if again.Loading || again.SessionID != "ses-1" {
		t.Fatal("repeated cancel changes nothing")
	}
}

func TestPromptAndResume(t *testing.T) {
	snapshot := converge.SessionSnapshot{
		SessionID:   "ses-old",
		Intent:      "abandoned work",
		Mode:        "converge",
		CurrentStep: "framing",
		LockedDimensions: []converge.LockedDimension{
			{Type: converge.DimensionDirection, OptionID: "o1"},
			{Type: converge.DimensionMood, OptionID: "calm"},
		},
		ImageHistory: map[string][]converge.GeneratedImage{
			"framing": images("f1", "f2"),
		},
		RegenerationCounts: map[string]int{"direction": 2},
	}

	state := reducer.Reduce(converge.InitialState(), converge.PromptResume{Snapshot: snapshot})
	if state.PendingResume == nil || state.PendingResume.SessionID != "ses-old" {
		t.Fatal("snapshot must be stashed without touching live state")
	}
	if state.Step != converge.StepIntent {
		t.Fatal("prompting must not move the machine")
	}

	state = reducer.Reduce(state, converge.ResumeSession{Options: options("wide", "close")})
	if state.SessionID != "ses-old" || state.Step != converge.StepFraming {
		t.Fatalf("resume must adopt the snapshot: %+v", state.Step)
	}
	if state.PendingResume != nil {
		t.Fatal("the stash clears after resume")
	}
	if len(state.CurrentImages) != 2 {
		t.Fatal("the resumed step's images restore from history")
	}
	if state.RegenerationCounts[converge.DimensionDirection] != 2 {
		t.Fatal("regeneration counts restore from the snapshot")
	}
	if len(state.CurrentOptions) != 2 {
		t.Fatal("catalog options for the resumed dimension must display")
	}
}

func TestResumeWithUnknownStepFallsBack(t *testing.T) {
	state := reducer.Reduce(converge.InitialState(), converge.PromptResume{Snapshot: converge.SessionSnapshot{
		SessionID:   "ses-old",
		Mode:        "converge",
		CurrentStep: "not-a-step",
	}})
	state = reducer.Reduce(state, converge.ResumeSession{})
	if state.Step != converge.StepDirection {
		t.Fatalf("unknown step falls back to the first post-start step, got %s", state.Step)
	}
}

func TestResumeWithoutStashIsNoop(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	next := reducer.Reduce(state, converge.ResumeSession{})
	if next.SessionID != "ses-1" {
		t.Fatal("resume without a stash must change nothing")
	}
}

func TestAbandonAndReset(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)

	reset := reducer.Reduce(state, converge.Reset{})
	if reset.SessionID != "" || reset.Step != converge.StepIntent {
		t.Fatal("reset must return to the initial state")
	}

	abandoned := reducer.Reduce(state, converge.AbandonSession{})
	if abandoned.SessionID != "" || abandoned.Step != converge.StepIntent {
		t.Fatal("abandon must return to the initial state")
	}
}

func TestCreditsModalLifecycle(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.RequestStarted{Operation: "regenerate", Token: 3})
	state = reducer.Reduce(state, converge.ShowCreditsModal{Required: 40, Available: 10, Operation: "regenerate"})

	if state.Loading {
		t.Fatal("the modal settles the request state")
	}
	if state.CreditsModal == nil || state.CreditsModal.Required != 40 || state.CreditsModal.Available != 10 {
		t.Fatalf("modal payload wrong: %+v", state.CreditsModal)
	}
	if state.SessionID != "ses-1" || state.Step != converge.StepDirection {
		t.Fatal("the session survives a credits failure")
	}

	state = reducer.Reduce(state, converge.HideCreditsModal{})
	if state.CreditsModal != nil {
		t.Fatal("hide must clear the modal")
	}
	if state.SessionID != "ses-1" {
		t.Fatal("dismissing the modal keeps the session")
	}
}

func TestSessionExpiredLifecycle(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	state = reducer.Reduce(state, converge.ShowSessionExpiredModal{Intent: "a lone lighthouse"})
	if state.SessionExpired == nil || state.SessionExpired.Intent != "a lone lighthouse" {
		t.Fatal("the expiry prompt carries the intent for reuse")
	}

	state = reducer.Reduce(state, converge.HideSessionExpiredModal{})
	if state.SessionID != "" || state.Step != converge.StepIntent {
		t.Fatal("an expired session cannot be continued")
	}
}

func TestFinalFrameRegenerationCount(t *testing.T) {
	state := startedSession(t, converge.ModeQuick)
	state = reducer.Reduce(state, converge.GenerateFinalFrameSuccess{URL: "https://img.test/ff1"})
	if state.FinalFrameURL != "https://img.test/ff1" || state.FinalFrameRegenerations != 0 {
		t.Fatal("the first render is not a regeneration")
	}
	state = reducer.Reduce(state, converge.GenerateFinalFrameSuccess{URL: "https://img.test/ff2", Regenerated: true})
	if state.FinalFrameRegenerations != 1 {
		t.Fatal("a re-render increments the count")
	}
}

func TestCameraAndSubjectMotionFlow(t *testing.T) {
	state := startedSession(t, converge.ModeQuick)
	state = reducer.Reduce(state, converge.GenerateFinalFrameSuccess{URL: "https://img.test/ff"})

	state = reducer.Reduce(state, converge.CameraMotionSuccess{
		DepthMapURL: "https://img.test/depth",
		Paths: []converge.CameraPath{
			{ID: "orbit", Keyframes: []converge.CameraKeyframe{{Time: 0, Position: [3]float64{0, 0, 1}}}},
		},
	})
	if state.Step != converge.StepCameraMotion {
		t.Fatalf("expected camera_motion, got %s", state.Step)
	}
	if state.CameraPaths[0].Keyframes[0].Rotation != ([4]float64{1, 0, 0, 0}) {
		t.Fatal("legacy keyframes gain the identity rotation")
	}

	state = reducer.Reduce(state, converge.SelectCameraMotion{MotionID: "orbit"})
	if state.SelectedCameraMotion != "orbit" || state.Step != converge.StepSubjectMotion {
		t.Fatalf("expected subject_motion with orbit selected, got %s / %s", state.Step, state.SelectedCameraMotion)
	}

	state = reducer.Reduce(state, converge.SetSubjectMotion{Description: "waves crash"})
	state = reducer.Reduce(state, converge.SubjectMotionSuccess{
		VideoURL:  "https://vid.test/preview",
		Prompt:    "waves crash against the rocks",
		InputMode: "text",
	})
	if state.Step != converge.StepPreview {
		t.Fatalf("expected preview, got %s", state.Step)
	}
	if state.SubjectMotion != "waves crash against the rocks" {
		t.Fatal("the expanded prompt replaces the raw description")
	}

	state = reducer.Reduce(state, converge.FinalizeSuccess{
		FinalPrompt: "final assembled prompt",
		Locked:      []converge.LockedDimension{{Type: converge.DimensionCameraMotion, OptionID: "orbit"}},
	})
	if state.Step != converge.StepComplete || state.FinalPrompt != "final assembled prompt" {
		t.Fatalf("expected complete with prompt, got %s", state.Step)
	}
}

func TestMotionStepsClearOptionDisplay(t *testing.T) {
	base := startedSession(t, converge.ModeQuick)
	if len(base.CurrentImages) == 0 || len(base.CurrentOptions) == 0 {
		t.Fatal("the session must open with a display to clear")
	}

	state := reducer.Reduce(base, converge.CameraMotionSuccess{
		Paths: []converge.CameraPath{{ID: "orbit"}},
	})
	if state.CurrentImages != nil || state.CurrentOptions != nil {
		t.Fatal("camera paths replace the option display")
	}

	state.CurrentImages = images("stale")
	state.CurrentOptions = options("stale")
	state = reducer.Reduce(state, converge.SelectCameraMotion{MotionID: "orbit"})
	if state.CurrentImages != nil || state.CurrentOptions != nil {
		t.Fatal("selecting a camera path must not carry the prior display forward")
	}

	state.CurrentImages = images("stale")
	state.CurrentOptions = options("stale")
	state = reducer.Reduce(state, converge.SubjectMotionSuccess{VideoURL: "https://vid.test/p", InputMode: "text"})
	if state.CurrentImages != nil || state.CurrentOptions != nil {
		t.Fatal("the preview step has no option display")
	}

	skipped := reducer.Reduce(base, converge.SkipSubjectMotion{})
	if skipped.CurrentImages != nil || skipped.CurrentOptions != nil {
		t.Fatal("skipping subject motion must also clear the display")
	}
}

func TestSkipSubjectMotion(t *testing.T) {
	state := startedSession(t, converge.ModeQuick)
	state.Step = converge.StepSubjectMotion
	state.SubjectMotion = "typed but unused"

	state = reducer.Reduce(state, converge.SkipSubjectMotion{})
	if state.Step != converge.StepPreview {
		t.Fatalf("expected preview, got %s", state.Step)
	}
	if state.SubjectMotion != "" || state.SubjectMotionVideoURL != "" {
		t.Fatal("skipping clears subject-motion payloads")
	}
}

func TestUnknownActionIsNoop(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	next := reducer.Reduce(state, unknownAction{})
	if next.SessionID != state.SessionID || next.Step != state.Step {
		t.Fatal("unknown actions must not change the state")
	}
}

type unknownAction struct{}

func (unknownAction) Kind() string { return "unknown" }

func TestTransitionsDoNotMutatePriorState(t *testing.T) {
	state := startedSession(t, converge.ModeConverge)
	historyBefore := len(state.ImageHistory)
	imagesBefore, _ := state.CachedImages(converge.DimensionDirection)

	_ = reducer.Reduce(state, converge.SelectOptionSuccess{
		Dimension:        converge.DimensionDirection,
		OptionID:         "o1",
		Target:           converge.StepMood,
		EnteredDimension: converge.DimensionMood,
		Images:           images("m1"),
	})
	_ = reducer.Reduce(state, converge.RegenerateSuccess{
		Dimension: converge.DimensionDirection,
		Images:    images("r1"),
	})

	if len(state.ImageHistory) != historyBefore {
		t.Fatal("prior state's history map gained entries")
	}
	after, _ := state.CachedImages(converge.DimensionDirection)
	if len(after) != len(imagesBefore) || after[0].ID != imagesBefore[0].ID {
		t.Fatal("prior state's cached images changed")
	}
	if state.RegenerationCounts[converge.DimensionDirection] != 0 {
		t.Fatal("prior state's counts changed")
	}
}
