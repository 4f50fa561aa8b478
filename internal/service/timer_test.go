package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collectFired(ch chan string, wait time.Duration) []string {
	deadline := time.After(wait)
	var fired []string
	for {
		select {
		case name := <-ch:
			fired = append(fired, name)
		case <-deadline:
			return fired
		}
	}
}

func TestScheduleReplacesPreviousTimer(t *testing.T) {
	room := NewRoom("1", "room", "p1")
	fired := make(chan string, 4)

	room.mu.Lock()
	room.schedule(20*time.Millisecond, func(*Room) { fired <- "first" })
	room.schedule(20*time.Millisecond, func(*Room) { fired <- "second" })
	require.NotNil(t, room.activeTimer)
	room.mu.Unlock()

	require.Equal(t, []string{"second"}, collectFired(fired, 200*time.Millisecond))

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Nil(t, room.activeTimer, "fired callback clears the handle")
}

func TestCancelPreventsCallback(t *testing.T) {
	room := NewRoom("1", "room", "p1")
	fired := make(chan string, 1)

	room.mu.Lock()
	room.schedule(20*time.Millisecond, func(*Room) { fired <- "boom" })
	room.cancelTimer()
	require.Nil(t, room.activeTimer)
	room.mu.Unlock()

	require.Empty(t, collectFired(fired, 100*time.Millisecond))
}

func TestStaleCallbackIsNoOp(t *testing.T) {
	room := NewRoom("1", "room", "p1")
	fired := make(chan string, 4)

	// 第一個回呼在鎖被持有期間觸發並卡在鎖上，
	// 解鎖前排入第二個回呼，第一個就成了過期回呼
	room.mu.Lock()
	room.schedule(time.Millisecond, func(*Room) { fired <- "stale" })
	time.Sleep(20 * time.Millisecond)
	room.schedule(30*time.Millisecond, func(*Room) { fired <- "current" })
	room.mu.Unlock()

	require.Equal(t, []string{"current"}, collectFired(fired, 200*time.Millisecond))
}

func TestCallbackRunsUnderRoomLock(t *testing.T) {
	room := NewRoom("1", "room", "p1")
	done := make(chan struct{})

	room.mu.Lock()
	room.schedule(10*time.Millisecond, func(r *Room) {
		// 回呼執行時持有房間鎖，對狀態的變動不會跟其他操作交錯
		r.CurrentQuestion = 7
		close(done)
	})
	room.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, 7, room.CurrentQuestion)
}

func TestRescheduleFromInsideCallback(t *testing.T) {
	room := NewRoom("1", "room", "p1")
	fired := make(chan string, 4)

	room.mu.Lock()
	room.schedule(10*time.Millisecond, func(r *Room) {
		fired <- "outer"
		r.schedule(10*time.Millisecond, func(*Room) { fired <- "inner" })
	})
	room.mu.Unlock()

	require.Equal(t, []string{"outer", "inner"}, collectFired(fired, 300*time.Millisecond))
}
