package service

import "time"

// TimerHandle 代表房間唯一一個已排定、可取消的回呼
type TimerHandle struct {
	timer *time.Timer
}

// schedule 排定 delay 之後對房間執行 fn，並取消先前排定的回呼
// 呼叫者須持有房間鎖；fn 觸發時會重新取得鎖，並確認自己仍是
// 房間目前的計時器才執行，已被取消或被取代的回呼不會有任何效果
func (r *Room) schedule(delay time.Duration, fn func(*Room)) {
	r.cancelTimer()

	handle := &TimerHandle{}
	handle.timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		// 計時器在排隊等鎖的期間可能已被取消或取代
		if r.activeTimer != handle {
			return
		}
		r.activeTimer = nil
		fn(r)
	})
	r.activeTimer = handle
}

// cancelTimer 取消尚未觸發的回呼，呼叫者須持有房間鎖
// 已經觸發但還在等鎖的回呼會因為 activeTimer 不再指向自己而放棄執行
func (r *Room) cancelTimer() {
	if r.activeTimer != nil {
		r.activeTimer.timer.Stop()
		r.activeTimer = nil
	}
}
