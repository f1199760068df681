package pullrequests

import "strings"

const (
	fallbackTitleConstant       = "No title"
	fallbackAuthorLoginConstant = "???"
	providerStateOpenConstant   = "open"
	providerStateClosedConstant = "closed"
)

// State is the normalized pull request state.
type State string

// Supported states. StateUnknown marks a provider value prsync does not recognize.
const (
	StateOpen    State = State("open")
	StateClosed  State = State("closed")
	StateUnknown State = State("unknown")
)

// ParseState maps a provider state string onto State.
func ParseState(providerState string) State {
	switch strings.ToLower(strings.TrimSpace(providerState)) {
	case providerStateOpenConstant:
		return StateOpen
	case providerStateClosedConstant:
		return StateClosed
	default:
		return StateUnknown
	}
}

// Record is a pull request as observed at listing time.
type Record struct {
	Number      int
	State       State
	HeadSHA     string
	Title       *string
	AuthorLogin *string
	// ProviderState keeps the raw state string for diagnostics when State is StateUnknown.
	ProviderState string
}

// DisplayTitle returns the title or "No title" when absent.
func (record Record) DisplayTitle() string {
	if record.Title == nil {
		return fallbackTitleConstant
	}
	return *record.Title
}

// DisplayAuthor returns the author login or "???" when absent.
func (record Record) DisplayAuthor() string {
	if record.AuthorLogin == nil {
		return fallbackAuthorLoginConstant
	}
	return *record.AuthorLogin
}
