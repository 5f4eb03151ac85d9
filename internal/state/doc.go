// Package state holds the shared server state: the most recently accepted
// batch and the persisted receipt counter.
//
// [Store] is the only piece of state mutated by multiple connection
// goroutines. All access goes through one mutex; per-connection state is
// exclusively owned by its connection and never lands here.
package state
