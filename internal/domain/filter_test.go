package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []Complaint {
	return []Complaint{
		{ID: "COMP-00001", Title: "Broken fan in room 204", Category: CategoryElectricity, Status: ComplaintStatusPending, StudentName: "Asha Verma"},
		{ID: "COMP-00002", Title: "Washroom tap leaking", Category: CategoryWashroom, Status: ComplaintStatusInProgress, StudentName: "Ravi Kumar"},
		{ID: "COMP-00003", Title: "Room allotment pending", Category: CategoryRoomAccommodation, Status: ComplaintStatusResolved, StudentName: "Meera Nair"},
		{ID: "COMP-00004", Title: "Stale food served", Category: CategoryMessFood, Status: ComplaintStatusPending, StudentName: "Asha Verma"},
	}
}

func TestFilterComplaintsNoConstraints(t *testing.T) {
	complaints := filterFixture()
	got := FilterComplaints(complaints, ComplaintFilter{Status: FilterAll, Category: FilterAll})
	assert.Equal(t, complaints, got)
}

func TestFilterComplaintsQueryCaseInsensitive(t *testing.T) {
	got := FilterComplaints(filterFixture(), ComplaintFilter{Query: "ROOM", Scope: SubjectTypeStudent})
	require.Len(t, got, 3)
	// relative order of the input is preserved
	assert.Equal(t, "COMP-00001", got[0].ID)
	assert.Equal(t, "COMP-00002", got[1].ID)
	assert.Equal(t, "COMP-00003", got[2].ID)
}

func TestFilterComplaintsQueryMatchesID(t *testing.T) {
	got := FilterComplaints(filterFixture(), ComplaintFilter{Query: "comp-00004"})
	require.Len(t, got, 1)
	assert.Equal(t, "COMP-00004", got[0].ID)
}

func TestFilterComplaintsScopeSelectsSearchField(t *testing.T) {
	// student scope searches the category, not the reporter name
	got := FilterComplaints(filterFixture(), ComplaintFilter{Query: "asha", Scope: SubjectTypeStudent})
	assert.Empty(t, got)

	got = FilterComplaints(filterFixture(), ComplaintFilter{Query: "asha", Scope: SubjectTypeAdmin})
	require.Len(t, got, 2)
	assert.Equal(t, "COMP-00001", got[0].ID)
	assert.Equal(t, "COMP-00004", got[1].ID)
}

func TestFilterComplaintsConstraintsCombine(t *testing.T) {
	got := FilterComplaints(filterFixture(), ComplaintFilter{
		Query:    "room",
		Status:   string(ComplaintStatusPending),
		Category: FilterAll,
		Scope:    SubjectTypeStudent,
	})
	require.Len(t, got, 1)
	assert.Equal(t, "COMP-00001", got[0].ID)
}

func TestFilterComplaintsStatusAndCategoryExact(t *testing.T) {
	got := FilterComplaints(filterFixture(), ComplaintFilter{Status: string(ComplaintStatusResolved)})
	require.Len(t, got, 1)
	assert.Equal(t, "COMP-00003", got[0].ID)

	got = FilterComplaints(filterFixture(), ComplaintFilter{Category: string(CategoryMessFood)})
	require.Len(t, got, 1)
	assert.Equal(t, "COMP-00004", got[0].ID)
}

func TestFilterComplaintsDoesNotMutateInput(t *testing.T) {
	complaints := filterFixture()
	original := filterFixture()

	_ = FilterComplaints(complaints, ComplaintFilter{Query: "room", Status: string(ComplaintStatusPending)})
	assert.Equal(t, original, complaints)

	// same input, same output
	first := FilterComplaints(complaints, ComplaintFilter{Query: "room"})
	second := FilterComplaints(complaints, ComplaintFilter{Query: "room"})
	assert.Equal(t, first, second)
}

func TestFilterComplaintsEmptyInput(t *testing.T) {
	got := FilterComplaints(nil, ComplaintFilter{Query: "anything"})
	assert.Empty(t, got)
}
