/*
types.go - Employee directory model

The local employee table mirrors the HR system's roster. Email is the
match key between the two, compared case-insensitively after trimming.
Employees are archived rather than deleted; the only hard delete is
duplicate-email cleanup during sync.
*/
package directory

import (
	"sort"
	"strings"
	"time"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is one local directory record.
type Employee struct {
	ID          string
	Email       string
	Name        string
	Position    string
	CostCenters []string
	Archived    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RosterRecord is one entry of the external HR roster snapshot.
type RosterRecord struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Position    string   `json:"position"`
	CostCenters []string `json:"costCenters"`
}

// NormalizeEmail lowercases and trims the match key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sameCostCenters compares cost-center assignments as sets.
func sameCostCenters(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, cc := range a {
		set[cc]++
	}
	for _, cc := range b {
		set[cc]--
		if set[cc] < 0 {
			return false
		}
	}
	return true
}

func sortedCostCenters(ccs []string) []string {
	out := append([]string(nil), ccs...)
	sort.Strings(out)
	return out
}

// =============================================================================
// CHANGE PLAN
// =============================================================================

// Update pairs the external record with the local snapshot it would
// overwrite, for audit display.
type Update struct {
	RosterRecord
	Previous Employee `json:"previous"`
}

// ArchiveCandidate identifies a local record absent from the roster.
type ArchiveCandidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DuplicateCandidate identifies a redundant local record sharing another
// record's email.
type DuplicateCandidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangePlan is the three-way diff between the external roster and the
// local table, plus the duplicate-removal candidates kept separate from
// the three-way plan. Ephemeral: recomputed on demand, never persisted.
type ChangePlan struct {
	Creates           []RosterRecord       `json:"creates"`
	Updates           []Update             `json:"updates"`
	Archives          []ArchiveCandidate   `json:"archives"`
	DuplicatesRemoved []DuplicateCandidate `json:"duplicatesRemoved"`
}

// IsEmpty reports whether the plan contains no changes at all.
func (p *ChangePlan) IsEmpty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 &&
		len(p.Archives) == 0 && len(p.DuplicatesRemoved) == 0
}
