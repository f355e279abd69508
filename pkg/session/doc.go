/*
Package session serialises and persists access to machines.

A Machine is single-actor. The Manager gives every session ID its own
reference-counted mutex (plus an optional distributed lock for multi-replica
deployments), loads the session's snapshot from a ports.StateStore, runs the
caller's operation and saves the result. Operations that return an error are
not saved, so a rejected transition never changes the persisted machine.
*/
package session
