// Package reconcile decides how a pr-<N> branch must change to mirror its pull request.
//
// Plan is a pure function of a pull request Record and the observed
// BranchReference; it performs no I/O.
package reconcile
