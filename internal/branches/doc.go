// Package branches runs the reconciliation pass that keeps one pr-<number>
// branch per open pull request pointing at its head commit and removes the
// branches of closed pull requests.
//
// Service drives a pass over the records supplied by a PullRequestLister and
// applies each planned action through a BranchMutator. CommandBuilder exposes
// the pass as the sync command.
package branches
