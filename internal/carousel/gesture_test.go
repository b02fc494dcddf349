package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTouchSwipeAdvancesAndCancelsPress(t *testing.T) {
	e, sched := newTestEngine()
	e.SelectCard(0)

	e.TouchStart(0, 300)
	assert.True(t, e.LongPressArmed())
	assert.Equal(t, 1, e.TouchEnd(120))
	assert.False(t, e.LongPressArmed())

	sched.Advance(time.Second)
	assert.Equal(t, 1, e.TotalPendingCups())
}

func TestTouchStartOnMissingCardDisarmsPress(t *testing.T) {
	e, sched := newTestEngine()
	e.SelectCard(0)

	e.TouchStart(0, 100)
	e.TouchStart(len(drinkTypes), 100)
	assert.False(t, e.LongPressArmed())

	sched.Advance(LongPressDelay)
	assert.Equal(t, 1, e.TotalPendingCups())
}

func TestTouchMoveCancelsLongPress(t *testing.T) {
	e, sched := newTestEngine()
	e.SelectCard(0)

	e.TouchStart(0, 100)
	e.TouchMove()
	sched.Advance(LongPressDelay)

	assert.Equal(t, 1, e.TotalPendingCups())
	assert.Equal(t, 0, e.TouchEnd(100))
}

func TestTouchHoldResetsCard(t *testing.T) {
	e, sched := newTestEngine()
	e.SelectCard(0)
	e.SelectCard(0)

	e.TouchStart(0, 100)
	sched.Advance(LongPressDelay)
	assert.Equal(t, 0, e.TotalPendingCups())

	// the release after the reset is a plain zero-distance drag
	assert.Equal(t, 0, e.TouchEnd(100))
}

func TestMouseDragRetreats(t *testing.T) {
	e, _ := newTestEngine()
	e.SelectCard(2)

	e.MouseDown(10)
	assert.Equal(t, 1, e.MouseUp(90))

	e.MouseDown(10)
	assert.Equal(t, 1, e.MouseUp(60), "exactly 50px stays in the dead zone")
}

func TestEndWithoutStartIgnored(t *testing.T) {
	e, _ := newTestEngine()

	assert.Equal(t, 0, e.MouseUp(-500))
	assert.Equal(t, 0, e.TouchEnd(-500))

	e.MouseDown(0)
	assert.Equal(t, 1, e.MouseUp(-500))
	assert.Equal(t, 1, e.MouseUp(-500))
}
