package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AndreiCalugar/FertiHub/internal/models"
)

func quoteFrom(supplierID string) models.Quote {
	return models.Quote{SupplierID: supplierID}
}

func TestEvaluateCompletion(t *testing.T) {
	tests := []struct {
		name             string
		totalContacted   int
		quotes           []models.Quote
		expectComplete   bool
		expectDistinct   int
	}{
		{
			name:           "two of three responded",
			totalContacted: 3,
			quotes:         []models.Quote{quoteFrom("a"), quoteFrom("b")},
			expectComplete: false,
			expectDistinct: 2,
		},
		{
			name:           "all responded, one duplicate revision",
			totalContacted: 3,
			quotes:         []models.Quote{quoteFrom("a"), quoteFrom("b"), quoteFrom("c"), quoteFrom("b")},
			expectComplete: true,
			expectDistinct: 3,
		},
		{
			name:           "zero contacted never completes",
			totalContacted: 0,
			quotes:         nil,
			expectComplete: false,
			expectDistinct: 0,
		},
		{
			name:           "single supplier single quote",
			totalContacted: 1,
			quotes:         []models.Quote{quoteFrom("a")},
			expectComplete: true,
			expectDistinct: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := EvaluateCompletion(tc.totalContacted, tc.quotes)
			assert.Equal(t, tc.expectComplete, res.IsComplete)
			assert.Equal(t, tc.expectDistinct, res.DistinctRespondedCount)
		})
	}
}
