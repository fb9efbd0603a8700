// Package memsession provides an in-process types.Session.
//
// Publications made with Put or Delete are routed synchronously to every matching
// subscriber of the same Session. Inject delivers samples as if they arrived from a
// remote peer, which local-only subscribers do not see. Pull-mode subscribers buffer
// matching samples until Pull releases them.
//
// memsession is the session used by the unit tests of keysub and by single-process
// pipelines that want keysub's lifecycle without a network transport.
package memsession
