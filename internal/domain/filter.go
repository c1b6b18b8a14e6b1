package domain

import "strings"

// FilterAll is the sentinel meaning "no constraint" for status and
// category filters.
const FilterAll = "all"

// ComplaintFilter describes the client-side list filters. Query matching
// is case-insensitive; Status and Category are exact matches unless set
// to FilterAll. Scope picks the role-dependent search field: student
// views search the category, admin views search the reporter name.
type ComplaintFilter struct {
	Query    string
	Status   string
	Category string
	Scope    SubjectType
}

// FilterComplaints returns the order-preserving subsequence of complaints
// matching every constraint. The input slice is never mutated; identical
// inputs always yield identical output.
func FilterComplaints(complaints []Complaint, filter ComplaintFilter) []Complaint {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := make([]Complaint, 0, len(complaints))
	for _, complaint := range complaints {
		if !matchesQuery(complaint, query, filter.Scope) {
			continue
		}
		if filter.Status != "" && filter.Status != FilterAll && string(complaint.Status) != filter.Status {
			continue
		}
		if filter.Category != "" && filter.Category != FilterAll && string(complaint.Category) != filter.Category {
			continue
		}
		result = append(result, complaint)
	}
	return result
}

func matchesQuery(complaint Complaint, query string, scope SubjectType) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(complaint.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(complaint.ID), query) {
		return true
	}
	if scope == SubjectTypeAdmin {
		return strings.Contains(strings.ToLower(complaint.StudentName), query)
	}
	return strings.Contains(strings.ToLower(string(complaint.Category)), query)
}
