// Package events decouples services that request background work from the
// task package that performs it. A service emits a TaskRequestEvent and
// whichever handlers are registered on the emitter decide what to run.
package events
