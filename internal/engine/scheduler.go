package engine

import (
	"time"

	"github.com/emberchat/ember-server/internal/models"
)

type timerScheduler struct{}

// NewScheduler returns the production scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) models.Stopper {
	return time.AfterFunc(d, fn)
}
