package githubcli

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/prsync/internal/execshell"
)

const (
	responseStatusTemplateConstant          = "%s failed (HTTP %d): %s"
	transportFailureTemplateConstant        = "%s failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	referenceAlreadyExistsMessageConstant   = "reference already exists"
	referenceDoesNotExistMessageConstant    = "reference does not exist"
	rateLimitMessageFragmentConstant        = "rate limit"
	githubCLIMessagePrefixConstant          = "gh:"
	unknownFailureMessageConstant           = "unknown failure"
	statusCodeSubmatchIndexConstant         = 1
	expectedStatusCodeSubmatchCountConstant = 2
)

var httpStatusPattern = regexp.MustCompile(`\(HTTP (\d{3})\)`)

var (
	// ErrTransport classifies retryable failures; see ResponseStatusError.Is.
	ErrTransport = errors.New("transport failure")
	// ErrReferenceNotFound classifies responses reporting that a git reference is absent.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrReferenceAlreadyExists classifies create-ref conflicts.
	ErrReferenceAlreadyExists = errors.New("reference already exists")
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ResponseStatusError reports a failed API call. StatusCode is zero when no HTTP response was received.
type ResponseStatusError struct {
	Operation  OperationName
	StatusCode int
	Message    string
	Cause      error
}

// Error describes the failed call.
func (statusError ResponseStatusError) Error() string {
	if statusError.StatusCode == 0 {
		return fmt.Sprintf(transportFailureTemplateConstant, statusError.Operation, statusError.Message)
	}
	return fmt.Sprintf(responseStatusTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.Message)
}

// Unwrap exposes the underlying execution error.
func (statusError ResponseStatusError) Unwrap() error {
	return statusError.Cause
}

// Is maps the response onto the package's classification sentinels.
func (statusError ResponseStatusError) Is(target error) bool {
	normalizedMessage := strings.ToLower(statusError.Message)
	switch target {
	case ErrTransport:
		switch {
		case statusError.StatusCode == 0:
			return true
		case statusError.StatusCode >= http.StatusInternalServerError:
			return true
		case statusError.StatusCode == http.StatusTooManyRequests:
			return true
		case statusError.StatusCode == http.StatusForbidden:
			return strings.Contains(normalizedMessage, rateLimitMessageFragmentConstant)
		}
		return false
	case ErrReferenceNotFound:
		if statusError.StatusCode == http.StatusNotFound {
			return true
		}
		return statusError.StatusCode == http.StatusUnprocessableEntity && strings.Contains(normalizedMessage, referenceDoesNotExistMessageConstant)
	case ErrReferenceAlreadyExists:
		return statusError.StatusCode == http.StatusUnprocessableEntity && strings.Contains(normalizedMessage, referenceAlreadyExistsMessageConstant)
	}
	return false
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// classifyExecutionError converts executor failures into ResponseStatusError.
// gh api reports HTTP failures on stderr as "gh: <message> (HTTP <status>)".
func classifyExecutionError(operation OperationName, executionError error) error {
	var failedError execshell.CommandFailedError
	if !errors.As(executionError, &failedError) {
		return ResponseStatusError{Operation: operation, Message: executionError.Error(), Cause: executionError}
	}

	standardError := strings.TrimSpace(failedError.Result.StandardError)
	statusCode := 0
	statusMatch := httpStatusPattern.FindStringSubmatch(standardError)
	if len(statusMatch) == expectedStatusCodeSubmatchCountConstant {
		statusCode, _ = strconv.Atoi(statusMatch[statusCodeSubmatchIndexConstant])
	}

	message := httpStatusPattern.ReplaceAllString(standardError, "")
	message = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(message), githubCLIMessagePrefixConstant))
	if len(message) == 0 {
		message = unknownFailureMessageConstant
	}

	return ResponseStatusError{Operation: operation, StatusCode: statusCode, Message: message, Cause: executionError}
}
