package framework

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

var (
	errStopped    = errors.New("runnable stopped")
	errForcedExit = errors.New("forced exit")
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name used in logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs Runnables on a shared context. A Runnable returning before
// the context is done is a failure: it stops all the others.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	count  int
	exitCh chan struct{}

	errLock sync.Mutex
	failure error
	errs    AggregatedError
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{exitCh: make(chan struct{})}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// Context is done when the runner stops.
func (r *Runner) Context() context.Context {
	return r.ctx
}

// Done is closed when the runner stops.
func (r *Runner) Done() <-chan struct{} {
	return r.ctx.Done()
}

// Stop requests all Runnables to stop.
func (r *Runner) Stop() {
	r.cancel()
}

// Err returns the first failure, nil if stopped by the context.
func (r *Runner) Err() error {
	r.errLock.Lock()
	defer r.errLock.Unlock()
	return r.failure
}

// HandleSignals stops on CtrlC or SIGTERM, and forces Wait to return on
// the second one.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.Stop()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts Runnables.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := strconv.Itoa(r.count)
		if named, ok := runnable.(Named); ok && named.Name() != "" {
			name = named.Name()
		}
		r.count++
		r.wg.Add(1)
		glog.V(4).Infof("start Runner[%s]", name)
		go r.run(runnable, name)
	}
	return r
}

func (r *Runner) run(runnable Runnable, name string) {
	defer r.wg.Done()
	err := runnable.Run(r.ctx)
	glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
	r.errLock.Lock()
	if r.ctx.Err() == nil {
		if err == nil {
			err = errStopped
		}
		if r.failure == nil {
			r.failure = err
		}
		glog.Errorf("Runner[%s] failed: %v", name, err)
	}
	if err != nil && err != context.Canceled {
		r.errs.Add(err)
	}
	r.errLock.Unlock()
	r.cancel()
}

// Wait waits until all Runnables stop and aggregates their errors.
func (r *Runner) Wait() error {
	doneCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(doneCh)
	}()
	select {
	case <-r.exitCh:
		return errForcedExit
	case <-doneCh:
	}
	r.errLock.Lock()
	defer r.errLock.Unlock()
	return r.errs.Aggregate()
}
