package followup

import (
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// Completion is the result of evaluating an inquiry's quote coverage.
type Completion struct {
	IsComplete             bool
	DistinctRespondedCount int
}

// EvaluateCompletion decides whether an inquiry is complete: every contacted
// supplier has submitted at least one quote. Duplicate quote rows from the
// same supplier (revisions) do not inflate the count. An inquiry that
// contacted nobody is never complete.
//
// Callers must pass the current totals at invocation time; quotes arrive
// asynchronously, so cached counts go stale.
func EvaluateCompletion(totalContacted int, quotes []models.Quote) Completion {
	distinct := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		distinct[q.SupplierID] = struct{}{}
	}
	return Completion{
		IsComplete:             totalContacted > 0 && len(distinct) == totalContacted,
		DistinctRespondedCount: len(distinct),
	}
}
