package board

import (
	"context"
	"time"
)

// DefaultNoticeDelay is the pause after each notice.
const DefaultNoticeDelay = 500 * time.Millisecond

// TimerPauser sleeps for the delay or until ctx is done.
type TimerPauser struct{}

// Pause blocks for delay unless ctx finishes first.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
