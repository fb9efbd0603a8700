// Package deferred provides Action, a value representing work that has not run yet.
//
// An Action is resolved exactly once, either by blocking (Wait, WaitContext) or
// cooperatively (Start), which hands the work to an Executor and returns a Pending
// result that can be polled, awaited or selected on.
//
// Resolving an Action a second time does not run the work again; it fails with
// ErrConsumed:
//
//	act := deferred.New(func(ctx context.Context) (int, error) { return 42, nil })
//	v, err := act.Wait() // runs the work
//	_, err = act.Wait()  // err == deferred.ErrConsumed
package deferred
