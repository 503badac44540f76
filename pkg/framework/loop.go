package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the loop interval when none is set.
const DefaultInterval = 10 * time.Millisecond

// Loop runs controllers periodically on a single goroutine, and the
// registered runnables in the background.
type Loop struct {
	Interval time.Duration

	controllers []Controller
	runners     []Runnable
	wakeUpCh    chan struct{}
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext implements Waker. It's safe to call from any goroutine.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It stops when ctx is done or any controller or
// runnable fails.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(ctx).Go(l.runners...)
	defer func() {
		runner.Stop()
		runner.Wait()
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-runner.Done():
			if err := runner.Err(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		if err := l.runIteration(runner.Context()); err != nil {
			return err
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	runner := NewRunner().HandleSignals()
	runner.Go(l)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration(ctx context.Context) error {
	for _, ctl := range l.controllers {
		if err := ctl.Control(ctx); err != nil {
			glog.Errorf("controller error: %v", err)
			return err
		}
	}
	return nil
}
