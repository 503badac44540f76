package framework

import "context"

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Controller is called once per loop iteration on the loop goroutine.
type Controller interface {
	Control(context.Context) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(context.Context) error

// Control implements Controller.
func (f ControlFunc) Control(ctx context.Context) error {
	return f(ctx)
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// Waker schedules an immediate loop iteration.
type Waker interface {
	TriggerNext()
}
