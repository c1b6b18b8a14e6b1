package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayStatus(t *testing.T) {
	cases := []struct {
		name        string
		status      ComplaintStatus
		actionCount int
		wantLabel   string
		wantVisual  VisualCategory
	}{
		{"resolved wins with zero actions", ComplaintStatusResolved, 0, "Resolved", VisualResolved},
		{"resolved wins with many actions", ComplaintStatusResolved, 12, "Resolved", VisualResolved},
		{"no-action status", ComplaintStatusNoAction, 0, "No Action", VisualNoAction},
		{"no-action status outranks count", ComplaintStatusNoAction, 5, "No Action", VisualNoAction},
		{"pending with empty log", ComplaintStatusPending, 0, "No Action", VisualNoAction},
		{"inprogress with empty log", ComplaintStatusInProgress, 0, "No Action", VisualNoAction},
		{"one action", ComplaintStatusPending, 1, "Few Actions", VisualFewActions},
		{"three actions", ComplaintStatusPending, 3, "Few Actions", VisualFewActions},
		{"four actions", ComplaintStatusPending, 4, "Many Actions", VisualManyActions},
		{"count outranks escalated", ComplaintStatusEscalated, 2, "Few Actions", VisualFewActions},
		{"count outranks inprogress", ComplaintStatusInProgress, 7, "Many Actions", VisualManyActions},
		{"escalated with empty log", ComplaintStatusEscalated, 0, "No Action", VisualNoAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveDisplayStatus(tc.status, tc.actionCount)
			assert.Equal(t, tc.wantLabel, got.Label)
			assert.Equal(t, tc.wantVisual, got.Category)
		})
	}
}

// Every status and count combination must map to some badge; there is no
// error path out of the derivation.
func TestDeriveDisplayStatusTotal(t *testing.T) {
	statuses := []ComplaintStatus{
		ComplaintStatusPending,
		ComplaintStatusInProgress,
		ComplaintStatusResolved,
		ComplaintStatusNoAction,
		ComplaintStatusEscalated,
		ComplaintStatus("bogus"),
	}
	for _, status := range statuses {
		for count := 0; count <= 10; count++ {
			got := DeriveDisplayStatus(status, count)
			assert.NotEmpty(t, got.Label, "status=%s count=%d", status, count)
			assert.NotEmpty(t, got.Category, "status=%s count=%d", status, count)
		}
	}
}

func TestDeriveDisplayStatusUnknownStatus(t *testing.T) {
	// unrecognized statuses still resolve through the count rules
	got := DeriveDisplayStatus(ComplaintStatus("archived"), 0)
	assert.Equal(t, "No Action", got.Label)

	got = DeriveDisplayStatus(ComplaintStatus("archived"), 99)
	assert.Equal(t, "Many Actions", got.Label)
}
