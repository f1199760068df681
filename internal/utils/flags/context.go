package flags

import "github.com/spf13/cobra"

const (
	// OwnerFlagName exposes the shared repository owner flag name.
	OwnerFlagName = "owner"
	// OwnerFlagUsage describes the shared repository owner flag purpose.
	OwnerFlagUsage = "Repository owner (overrides REPO_OWNER)"
	// RepositoryFlagName exposes the shared repository name flag name.
	RepositoryFlagName = "repo"
	// RepositoryFlagUsage describes the shared repository name flag purpose.
	RepositoryFlagUsage = "Repository name (overrides REPO_NAME)"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print planned branch changes without applying them"
	// ConcurrencyFlagName exposes the shared concurrency flag name.
	ConcurrencyFlagName = "concurrency"
	// ConcurrencyFlagUsage describes the shared concurrency flag purpose.
	ConcurrencyFlagUsage = "Number of pull requests reconciled in parallel"
)

// RepositoryFlagDefinition captures configuration for repository context flags.
type RepositoryFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// RepositoryFlagDefinitions groups repository context flag definitions.
type RepositoryFlagDefinitions struct {
	Owner RepositoryFlagDefinition
	Name  RepositoryFlagDefinition
}

// DefaultRepositoryFlagDefinitions returns the --owner and --repo definitions.
func DefaultRepositoryFlagDefinitions() RepositoryFlagDefinitions {
	return RepositoryFlagDefinitions{
		Owner: RepositoryFlagDefinition{Name: OwnerFlagName, Usage: OwnerFlagUsage, Enabled: true},
		Name:  RepositoryFlagDefinition{Name: RepositoryFlagName, Usage: RepositoryFlagUsage, Enabled: true},
	}
}

// RepositoryFlagValues stores repository context flag values.
type RepositoryFlagValues struct {
	Owner string
	Name  string
}

// BindRepositoryFlags attaches repository context flags to the provided command.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues, definitions RepositoryFlagDefinitions) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.Owner.Enabled && len(definitions.Owner.Name) > 0 {
		flagSet.StringVar(&values.Owner, definitions.Owner.Name, defaults.Owner, definitions.Owner.Usage)
	}
	if definitions.Name.Enabled && len(definitions.Name.Name) > 0 {
		flagSet.StringVar(&values.Name, definitions.Name.Name, defaults.Name, definitions.Name.Usage)
	}

	return &values
}

// ExecutionFlagValues stores execution control flag values.
type ExecutionFlagValues struct {
	DryRun      bool
	Concurrency int
}

// BindExecutionFlags attaches --dry-run and --concurrency to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionFlagValues) *ExecutionFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	AddToggleFlag(command.Flags(), &values.DryRun, DryRunFlagName, "", defaults.DryRun, DryRunFlagUsage)
	command.Flags().IntVar(&values.Concurrency, ConcurrencyFlagName, defaults.Concurrency, ConcurrencyFlagUsage)

	return &values
}
