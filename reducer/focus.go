package reducer

import "github.com/goliatone/go-converge"

// gridColumns is the fixed column width used for 2-D arrow semantics.
func gridColumns(count int) int {
	if count <= 9 {
		return 3
	}
	return 4
}

// moveFocus moves the keyboard cursor over the current option grid.
// Left/right wrap within the row, up/down clamp. No-op when there is
// nothing to focus.
func moveFocus(state converge.SessionState, dir converge.FocusDirection) converge.SessionState {
	count := state.FocusCount()
	if count == 0 {
		return state
	}

	idx := state.FocusedOption
	if idx < 0 || idx >= count {
		idx = 0
	}
	cols := gridColumns(count)
	row := idx / cols
	rowStart := row * cols
	rowEnd := rowStart + cols - 1
	if rowEnd > count-1 {
		rowEnd = count - 1
	}

	switch dir {
	case converge.FocusRight:
		if idx == rowEnd {
			idx = rowStart
		} else {
			idx++
		}
	case converge.FocusLeft:
		if idx == rowStart {
			idx = rowEnd
		} else {
			idx--
		}
	case converge.FocusDown:
		if idx+cols < count {
			idx += cols
		}
	case converge.FocusUp:
		if idx-cols >= 0 {
			idx -= cols
		}
	default:
		return state
	}

	state.FocusedOption = idx
	return state
}
