package controller

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-converge"
)

// Classify maps one failed operation onto exactly one recoverable action.
// Every call site funnels every failure through here; the reducer never
// sees a raw error.
func Classify(err error, operation string, cat *converge.Catalog, intent string) converge.Action {
	if converge.IsCancellation(err) {
		return converge.CancelGeneration{}
	}

	code := converge.ErrorCode(err)
	if code == "" {
		msg := ""
		if err != nil {
			msg = strings.TrimSpace(err.Error())
		}
		if msg == "" {
			msg = cat.MessageFor("")
		}
		return converge.RequestFailed{Operation: operation, Message: msg}
	}

	switch code {
	case converge.ErrCodeInsufficientBalance:
		meta := converge.ErrorMetadata(err)
		return converge.ShowCreditsModal{
			Required:  metaInt(meta, "required"),
			Available: metaInt(meta, "available"),
			Operation: operation,
		}

	case converge.ErrCodeActiveSessionExists:
		if snap, ok := snapshotFromMetadata(converge.ErrorMetadata(err)); ok {
			return converge.PromptResume{Snapshot: snap}
		}
		// Malformed or missing snapshot: degrade to a plain message.
		return converge.RequestFailed{Operation: operation, Message: cat.MessageFor(code)}

	case converge.ErrCodeSessionExpired:
		return converge.ShowSessionExpiredModal{Intent: intent}

	default:
		return converge.RequestFailed{Operation: operation, Message: cat.MessageFor(code)}
	}
}

func metaInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// snapshotFromMetadata extracts the prior-session snapshot attached to a
// conflicting-session error. The snapshot may arrive typed or as decoded
// JSON; both shapes are accepted, anything else is rejected.
func snapshotFromMetadata(meta map[string]any) (converge.SessionSnapshot, bool) {
	if meta == nil {
		return converge.SessionSnapshot{}, false
	}
	raw, ok := meta["session"]
	if !ok {
		return converge.SessionSnapshot{}, false
	}
	switch v := raw.(type) {
	case converge.SessionSnapshot:
		return v, v.SessionID != ""
	case *converge.SessionSnapshot:
		if v == nil {
			return converge.SessionSnapshot{}, false
		}
		return *v, v.SessionID != ""
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return converge.SessionSnapshot{}, false
		}
		var snap converge.SessionSnapshot
		if err := json.Unmarshal(encoded, &snap); err != nil {
			return converge.SessionSnapshot{}, false
		}
		return snap, snap.SessionID != ""
	default:
		return converge.SessionSnapshot{}, false
	}
}
