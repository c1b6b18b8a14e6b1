package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "inprogress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusNoAction   ComplaintStatus = "no-action"
	ComplaintStatusEscalated  ComplaintStatus = "escalated"
)

// ComplaintPriority enumerates urgency as reported by the student.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "Low"
	ComplaintPriorityMedium ComplaintPriority = "Medium"
	ComplaintPriorityHigh   ComplaintPriority = "High"
)

// ComplaintCategory enumerates the fixed set of hostel issue categories.
type ComplaintCategory string

const (
	CategoryElectricity       ComplaintCategory = "Electricity"
	CategoryWashroom          ComplaintCategory = "Washroom"
	CategoryRoomAccommodation ComplaintCategory = "Room Accommodation"
	CategoryMessFood          ComplaintCategory = "Mess Food"
	CategoryMentalHealth      ComplaintCategory = "Mental Health"
	CategoryHarassment        ComplaintCategory = "Harassment & Violence"
	CategorySafety            ComplaintCategory = "Safety"
	CategoryFinancial         ComplaintCategory = "Financial"
	CategoryAcademic          ComplaintCategory = "Academic"
	CategoryOther             ComplaintCategory = "Other"
)

// Categories lists every valid complaint category in display order.
var Categories = []ComplaintCategory{
	CategoryElectricity,
	CategoryWashroom,
	CategoryRoomAccommodation,
	CategoryMessFood,
	CategoryMentalHealth,
	CategoryHarassment,
	CategorySafety,
	CategoryFinancial,
	CategoryAcademic,
	CategoryOther,
}

// IsValid reports whether the category is part of the fixed set.
func (c ComplaintCategory) IsValid() bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// SLAWindow is the fixed display-only deadline applied at creation.
const SLAWindow = 48 * time.Hour

// Complaint is the aggregate for a single reported hostel issue.
type Complaint struct {
	ID           string
	Title        string
	Description  string
	Category     ComplaintCategory
	Priority     ComplaintPriority
	StudentID    string
	StudentName  string
	StudentEmail string
	StudentPhone *string
	RollNumber   string
	Branch       string
	Semester     int
	Status       ComplaintStatus
	IsAnonymous  bool
	// ActionCount is materialized from the action log on every append;
	// it is never settable on its own.
	ActionCount int
	ForwardedTo []string
	Attachments []ComplaintAttachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SLADeadline time.Time
	ResolvedAt  *time.Time
}

// Redacted returns a copy with reporter identity suppressed. Used for any
// surface shown to a role that does not own the complaint when the
// reporter chose to stay anonymous.
func (c Complaint) Redacted() Complaint {
	if !c.IsAnonymous {
		return c
	}
	c.StudentName = "Anonymous"
	c.StudentEmail = ""
	c.StudentPhone = nil
	c.RollNumber = ""
	return c
}

// ComplaintAttachment stores metadata for a file attached to a complaint
// or to one of its actions. The retrieval URL belongs to the external
// storage collaborator and may be absent.
type ComplaintAttachment struct {
	ID        string
	FileName  string
	SizeBytes int64
	MimeType  string
	URL       *string
	CreatedAt time.Time
}
