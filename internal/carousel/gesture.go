package carousel

// A touch on a card both starts a drag and arms a long-press. Movement or
// release before the press fires cancels it, so a touch ends up as exactly
// one of tap, swipe or reset.

// TouchStart begins a drag at x and arms the long-press on the card at index.
func (e *Engine) TouchStart(index int, x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = drag{active: true, startX: x}
	e.armLocked(index)
}

// TouchMove cancels a pending long-press.
func (e *Engine) TouchMove() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

// TouchEnd cancels a pending long-press and applies the drag started by
// TouchStart as a swipe. It returns the focused index.
func (e *Engine) TouchEnd(x float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	return e.endDragLocked(x)
}

// MouseDown begins a drag at x.
func (e *Engine) MouseDown(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = drag{active: true, startX: x}
}

// MouseUp applies the drag started by MouseDown as a swipe and returns the
// focused index.
func (e *Engine) MouseUp(x float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endDragLocked(x)
}

func (e *Engine) endDragLocked(x float64) int {
	if !e.drag.active {
		return e.focused
	}
	e.drag.active = false
	e.swipeLocked(e.drag.startX - x)
	return e.focused
}
