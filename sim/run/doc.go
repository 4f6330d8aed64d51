// Package run stores live simulation runs in memory and manages their
// lifecycle: id generation, case-insensitive lookup, and expiry of
// stale runs. Runs are built from scenario configs via the scenario
// package and are not persisted; a server restart starts fresh.
package run
