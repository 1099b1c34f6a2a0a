package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

func TestPushThenPopPreservesOrder(t *testing.T) {
	t.Parallel()

	q := NewDwellQueue(4)
	q.Push(detection.Dwell{DwellCount: 1})
	q.Push(detection.Dwell{DwellCount: 2})

	d1, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint32(1), d1.DwellCount)

	d2, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), d2.DwellCount)
}

func TestPushBeyondCapacityDropsOldest(t *testing.T) {
	t.Parallel()

	q := NewDwellQueue(2)
	q.Push(detection.Dwell{DwellCount: 1})
	q.Push(detection.Dwell{DwellCount: 2})
	q.Push(detection.Dwell{DwellCount: 3})

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())

	d, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), d.DwellCount)
}

func TestPopBlocksUntilPush(t *testing.T) {
	t.Parallel()

	q := NewDwellQueue(4)
	done := make(chan detection.Dwell, 1)

	go func() {
		d, ok := q.Pop()
		if ok {
			done <- d
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(detection.Dwell{DwellCount: 99})

	select {
	case d := <-done:
		assert.Equal(t, uint32(99), d.DwellCount)
	case <-time.After(time.Second):
		t.Fatal("Pop never returned after Push")
	}
}

func TestCloseUnblocksPendingPop(t *testing.T) {
	t.Parallel()

	q := NewDwellQueue(4)
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Close")
	}
}
