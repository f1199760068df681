package branches

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/prsync/internal/pullrequests"
)

const (
	unknownStatePolicyInvalidTemplateConstant = "unsupported unknown state policy %q (expected skip or abort)"
	configurationErrorTemplateConstant        = "invalid configuration %s: %s"
	ownerFieldNameConstant                    = "sync.owner"
	repositoryFieldNameConstant               = "sync.repository"
	pageSizeFieldNameConstant                 = "sync.page_size"
	concurrencyFieldNameConstant              = "sync.concurrency"
	maxRetriesFieldNameConstant               = "sync.max_retries"
	retryBaseDelayFieldNameConstant           = "sync.retry_base_delay"
	unknownStatePolicyFieldNameConstant       = "sync.unknown_state_policy"
	tokenFieldNameConstant                    = "API_TOKEN"
	requiredValueMessageConstant              = "value required"
	positiveValueMessageConstant              = "must be at least 1"
	nonNegativeValueMessageConstant           = "must not be negative"
	pageSizeLimitMessageTemplateConstant      = "must be at most %d"
	defaultConcurrencyConstant                = 1
	defaultRetryBaseDelayConstant             = time.Second
)

// UnknownStatePolicy selects how a pass treats pull requests whose state is neither open nor closed.
type UnknownStatePolicy string

// Supported unknown state policies.
const (
	UnknownStatePolicySkip  UnknownStatePolicy = UnknownStatePolicy("skip")
	UnknownStatePolicyAbort UnknownStatePolicy = UnknownStatePolicy("abort")
)

// UnknownStatePolicyChoices lists the accepted policy values.
func UnknownStatePolicyChoices() []string {
	return []string{string(UnknownStatePolicySkip), string(UnknownStatePolicyAbort)}
}

// ParseUnknownStatePolicy maps a case-insensitive value onto a policy. Empty input selects skip.
func ParseUnknownStatePolicy(value string) (UnknownStatePolicy, error) {
	switch UnknownStatePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", UnknownStatePolicySkip:
		return UnknownStatePolicySkip, nil
	case UnknownStatePolicyAbort:
		return UnknownStatePolicyAbort, nil
	default:
		return "", fmt.Errorf(unknownStatePolicyInvalidTemplateConstant, value)
	}
}

// UnmarshalText lets configuration decoding validate the policy.
func (policy *UnknownStatePolicy) UnmarshalText(text []byte) error {
	parsedPolicy, parseError := ParseUnknownStatePolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsedPolicy
	return nil
}

// MarshalText renders the policy for configuration output.
func (policy UnknownStatePolicy) MarshalText() ([]byte, error) {
	return []byte(policy), nil
}

// ConfigurationError reports a missing or invalid setting detected before any remote call.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error describes the invalid setting.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Field, configurationError.Message)
}

// CommandConfiguration captures configuration values for the sync command.
type CommandConfiguration struct {
	Owner              string             `mapstructure:"owner" yaml:"owner"`
	Repository         string             `mapstructure:"repository" yaml:"repository"`
	PageSize           int                `mapstructure:"page_size" yaml:"page_size"`
	UnknownStatePolicy UnknownStatePolicy `mapstructure:"unknown_state_policy" yaml:"unknown_state_policy"`
	Concurrency        int                `mapstructure:"concurrency" yaml:"concurrency"`
	DryRun             bool               `mapstructure:"dry_run" yaml:"dry_run"`
	MaxRetries         int                `mapstructure:"max_retries" yaml:"max_retries"`
	RetryBaseDelay     time.Duration      `mapstructure:"retry_base_delay" yaml:"retry_base_delay"`
}

// DefaultCommandConfiguration provides baseline configuration values for the sync command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PageSize:           pullrequests.DefaultPageSize,
		UnknownStatePolicy: UnknownStatePolicySkip,
		Concurrency:        defaultConcurrencyConstant,
		RetryBaseDelay:     defaultRetryBaseDelayConstant,
	}
}

// Sanitize trims configuration values and fills zero values with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	if sanitized.PageSize == 0 {
		sanitized.PageSize = defaults.PageSize
	}
	if len(sanitized.UnknownStatePolicy) == 0 {
		sanitized.UnknownStatePolicy = defaults.UnknownStatePolicy
	}
	if sanitized.Concurrency == 0 {
		sanitized.Concurrency = defaults.Concurrency
	}
	if sanitized.RetryBaseDelay == 0 {
		sanitized.RetryBaseDelay = defaults.RetryBaseDelay
	}

	return sanitized
}

// Validate reports the first missing or out-of-range setting.
func (configuration CommandConfiguration) Validate() error {
	if len(strings.TrimSpace(configuration.Owner)) == 0 {
		return ConfigurationError{Field: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(configuration.Repository)) == 0 {
		return ConfigurationError{Field: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if configuration.PageSize < 1 {
		return ConfigurationError{Field: pageSizeFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if configuration.PageSize > pullrequests.MaxPageSize {
		return ConfigurationError{Field: pageSizeFieldNameConstant, Message: fmt.Sprintf(pageSizeLimitMessageTemplateConstant, pullrequests.MaxPageSize)}
	}
	if configuration.Concurrency < 1 {
		return ConfigurationError{Field: concurrencyFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if configuration.MaxRetries < 0 {
		return ConfigurationError{Field: maxRetriesFieldNameConstant, Message: nonNegativeValueMessageConstant}
	}
	if configuration.RetryBaseDelay < 0 {
		return ConfigurationError{Field: retryBaseDelayFieldNameConstant, Message: nonNegativeValueMessageConstant}
	}
	if _, policyError := ParseUnknownStatePolicy(string(configuration.UnknownStatePolicy)); policyError != nil {
		return ConfigurationError{Field: unknownStatePolicyFieldNameConstant, Message: policyError.Error()}
	}
	return nil
}
