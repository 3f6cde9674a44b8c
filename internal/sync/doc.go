// Package sync implements content synchronization between a source-of-truth
// content root and a target root: scanning and fingerprinting both sides,
// classifying differences against persisted sync history, resolving
// conflicts, and applying the resulting change set with recoverable backups.
package sync
