package domain

// VisualCategory buckets a complaint into one of the six badge styles.
type VisualCategory string

const (
	VisualResolved    VisualCategory = "resolved"
	VisualNoAction    VisualCategory = "no-action"
	VisualFewActions  VisualCategory = "few-actions"
	VisualManyActions VisualCategory = "many-actions"
	VisualEscalated   VisualCategory = "escalated"
	VisualInProgress  VisualCategory = "inprogress"
	VisualPending     VisualCategory = "pending"
)

// DisplayStatus is the derived badge shown next to a complaint.
type DisplayStatus struct {
	Label    string
	Category VisualCategory
}

// DeriveDisplayStatus maps a stored status plus the action count to the
// badge shown in list and detail views. The branch order is a first-match
// precedence contract: the action-count rules outrank the escalated and
// inprogress statuses, so an escalated complaint with two recorded actions
// displays as "Few Actions". Callers must not reorder these checks.
func DeriveDisplayStatus(status ComplaintStatus, actionCount int) DisplayStatus {
	if status == ComplaintStatusResolved {
		return DisplayStatus{Label: "Resolved", Category: VisualResolved}
	}
	if status == ComplaintStatusNoAction || actionCount == 0 {
		return DisplayStatus{Label: "No Action", Category: VisualNoAction}
	}
	if actionCount >= 1 && actionCount <= 3 {
		return DisplayStatus{Label: "Few Actions", Category: VisualFewActions}
	}
	if actionCount > 3 {
		return DisplayStatus{Label: "Many Actions", Category: VisualManyActions}
	}
	if status == ComplaintStatusEscalated {
		return DisplayStatus{Label: "Escalated", Category: VisualEscalated}
	}
	if status == ComplaintStatusInProgress {
		return DisplayStatus{Label: "In Progress", Category: VisualInProgress}
	}
	return DisplayStatus{Label: "Pending", Category: VisualPending}
}
