package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prsync/internal/reconcile"
)

func TestSummaryCountsOutcomes(testInstance *testing.T) {
	summary := reconcile.Summary{}
	summary.Record(reconcile.ActionCreate)
	summary.Record(reconcile.ActionCreate)
	summary.Record(reconcile.ActionUpdate)
	summary.Record(reconcile.ActionDelete)
	summary.Record(reconcile.ActionNoOp)
	summary.RecordSkipped()

	require.Equal(testInstance, reconcile.Summary{Created: 2, Updated: 1, Deleted: 1, Unchanged: 1, Skipped: 1}, summary)
	require.Equal(testInstance, 6, summary.Total())
	require.Equal(testInstance, "2 created, 1 updated, 1 deleted, 1 unchanged, 1 skipped", summary.String())

	summary.Merge(reconcile.Summary{Deleted: 3})
	require.Equal(testInstance, 4, summary.Deleted)
}
