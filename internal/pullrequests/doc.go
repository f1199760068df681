// Package pullrequests lists the pull requests of a repository and normalizes them into Records.
package pullrequests
