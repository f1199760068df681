// Package githubcli issues the GitHub REST calls prsync needs through the gh CLI.
//
// Client lists pull requests page by page and reads, creates, and deletes
// branch references. Failures surface as ResponseStatusError, which matches
// ErrTransport, ErrReferenceNotFound, and ErrReferenceAlreadyExists through
// errors.Is so callers can branch on the outcome without parsing messages.
package githubcli
