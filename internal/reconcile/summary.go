package reconcile

import "fmt"

const summaryTemplateConstant = "%d created, %d updated, %d deleted, %d unchanged, %d skipped"

// Summary counts the outcomes of one reconciliation pass.
type Summary struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Skipped   int
}

// Record counts an applied (or, in dry-run mode, planned) action.
func (summary *Summary) Record(kind ActionKind) {
	switch kind {
	case ActionCreate:
		summary.Created++
	case ActionUpdate:
		summary.Updated++
	case ActionDelete:
		summary.Deleted++
	default:
		summary.Unchanged++
	}
}

// RecordSkipped counts a pull request left untouched.
func (summary *Summary) RecordSkipped() {
	summary.Skipped++
}

// Merge adds the counts of other.
func (summary *Summary) Merge(other Summary) {
	summary.Created += other.Created
	summary.Updated += other.Updated
	summary.Deleted += other.Deleted
	summary.Unchanged += other.Unchanged
	summary.Skipped += other.Skipped
}

// Total is the number of pull requests accounted for.
func (summary Summary) Total() int {
	return summary.Created + summary.Updated + summary.Deleted + summary.Unchanged + summary.Skipped
}

// String renders the counts on one line.
func (summary Summary) String() string {
	return fmt.Sprintf(summaryTemplateConstant, summary.Created, summary.Updated, summary.Deleted, summary.Unchanged, summary.Skipped)
}
