// Package refs reads and mutates the pr-<N> branches of a repository.
//
// Mutator treats a missing branch as a normal outcome: CurrentReference
// returns nil and deleting an absent branch succeeds. Mutations of the same
// branch are serialized.
package refs
