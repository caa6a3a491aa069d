/*
reconcile.go - Directory reconciliation engine

PURPOSE:
  Pure diff: given a local employee snapshot and an external roster
  snapshot, computes the create/update/archive plan and flags local email
  duplicates for removal. No I/O - independently testable without a
  running HTTP client or database.

ALGORITHM:
  1. Normalize emails (lowercase, trim). Local records sharing an email
     keep the oldest record; the rest become duplicatesRemoved candidates.
     Duplicates stay out of the three-way plan entirely.
  2. External record with no local match            -> creates
  3. External record matching a non-archived local,
     differing in name, position, or cost centers   -> updates (with the
     previous local snapshot for audit display)
  4. Non-archived local with no external match      -> archives
  5. Locally archived records are excluded from matching: they neither
     block a create nor trigger an archive.

DETERMINISM:
  The plan is a pure function of the two snapshots; all output slices are
  sorted, so unchanged inputs yield an identical plan. The façade relies
  on this to recompute at apply time instead of trusting a client-held
  plan.
*/
package directory

import "sort"

// BuildPlan diffs the external roster against the local employee table.
func BuildPlan(local []Employee, external []RosterRecord) ChangePlan {
	var plan ChangePlan

	// Index active locals by normalized email, keeping the oldest record
	// per email. Later records with the same key are duplicates.
	byEmail := make(map[string]Employee)
	for _, emp := range sortedByAge(local) {
		if emp.Archived {
			continue
		}
		key := NormalizeEmail(emp.Email)
		if _, seen := byEmail[key]; seen {
			plan.DuplicatesRemoved = append(plan.DuplicatesRemoved, DuplicateCandidate{
				ID:    emp.ID,
				Name:  emp.Name,
				Email: emp.Email,
			})
			continue
		}
		byEmail[key] = emp
	}

	// Walk the roster: unseen email -> create, changed fields -> update.
	matched := make(map[string]bool, len(external))
	for _, rec := range external {
		key := NormalizeEmail(rec.Email)
		if key == "" || matched[key] {
			continue
		}
		matched[key] = true

		emp, ok := byEmail[key]
		if !ok {
			plan.Creates = append(plan.Creates, RosterRecord{
				Email:       key,
				Name:        rec.Name,
				Position:    rec.Position,
				CostCenters: sortedCostCenters(rec.CostCenters),
			})
			continue
		}

		if emp.Name != rec.Name || emp.Position != rec.Position ||
			!sameCostCenters(emp.CostCenters, rec.CostCenters) {
			plan.Updates = append(plan.Updates, Update{
				RosterRecord: RosterRecord{
					Email:       key,
					Name:        rec.Name,
					Position:    rec.Position,
					CostCenters: sortedCostCenters(rec.CostCenters),
				},
				Previous: emp,
			})
		}
	}

	// Active locals the roster no longer contains.
	for key, emp := range byEmail {
		if !matched[key] {
			plan.Archives = append(plan.Archives, ArchiveCandidate{
				ID:    emp.ID,
				Name:  emp.Name,
				Email: emp.Email,
			})
		}
	}

	sort.Slice(plan.Creates, func(i, j int) bool { return plan.Creates[i].Email < plan.Creates[j].Email })
	sort.Slice(plan.Updates, func(i, j int) bool { return plan.Updates[i].Email < plan.Updates[j].Email })
	sort.Slice(plan.Archives, func(i, j int) bool { return plan.Archives[i].Email < plan.Archives[j].Email })
	sort.Slice(plan.DuplicatesRemoved, func(i, j int) bool {
		a, b := plan.DuplicatesRemoved[i], plan.DuplicatesRemoved[j]
		if a.Email != b.Email {
			return a.Email < b.Email
		}
		return a.ID < b.ID
	})

	return plan
}

// sortedByAge orders employees oldest first, with ID as the tiebreaker so
// duplicate detection is stable even when timestamps collide.
func sortedByAge(emps []Employee) []Employee {
	out := append([]Employee(nil), emps...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
