// Package keysub provides the subscription layer of a key-expression based
// publish/subscribe middleware.
//
// A Client wraps a Session (the runtime that routes and delivers samples) and hands
// out builders. A builder configures reliability, delivery mode, period and locality,
// selects how samples are delivered, and yields a deferred action that performs the
// declaration when resolved. The result is a live Subscriber handle that owns the
// subscription's teardown.
//
// # Quick Start
//
//	sess := memsession.New()
//	client, err := keysub.NewClient(sess)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	sub, err := client.Subscribe("sensor/temp").
//	    BestEffort().
//	    Callback(func(s keysub.Sample) { fmt.Println(s) }).
//	    Declare().
//	    Wait()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Drop()
//
// # Delivery
//
// Callback delivery invokes a function from the session's delivery goroutines.
// Handler delivery installs a consumer produced by a handler.Factory and returns the
// matching receiver to the caller:
//
//	sub, err := client.Subscribe("sensor/**").Channel().Declare().WaitContext(ctx)
//	for s := range sub.Receiver().All(ctx) {
//	    process(s)
//	}
//
// Handler consumers never block the delivery path. A sample that finds the receiver
// full or detached is dropped and counted.
//
// # Resolution
//
// Declare and Close return a *deferred.Action. Wait and WaitContext run the work on
// the calling goroutine; Start runs it on the client's executor and returns a Pending
// result. Each action resolves exactly once; a second resolution
// returns ErrConsumed.
//
// # Lifecycle
//
// Subscriber states progress as:
//
//	Alive → Closing → Closed   (Close)
//	Alive → Dropped            (Drop, or garbage collection of the last handle)
//
// The session's undeclare entry point is called at most once per subscription.
//
// # Sessions
//
// Two sessions ship with the module: memsession (in-process routing, useful for
// tests and single-process pipelines) and natsession (NATS core and JetStream).
// Any type implementing Session can be used.
package keysub
