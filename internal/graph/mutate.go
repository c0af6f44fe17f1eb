package graph

import (
	"fmt"
	"sort"

	"github.com/mwhitford/abacus/internal/issue"
)

// Apply adds then removes dependency edges on subject, keeping the reverse
// blocks lists of the touched issues in sync. It returns the subject's
// resulting depends_on list.
//
// All preconditions are checked before anything is written: the subject and
// every id in add must exist, and every added edge must pass WouldCycle.
// One failing candidate aborts the whole request with no partial effect.
//
// The writes span up to 1+len(add)+len(remove) records with no cross-record
// transaction. If a blocks update fails after the subject's depends_on was
// committed, the error is a PartialWriteError carrying the committed list;
// retrying the same request is safe because every step is idempotent.
func Apply(repo Repository, subject int, add, remove []int) ([]int, error) {
	if len(add) == 0 && len(remove) == 0 {
		return nil, ErrEmptyRequest
	}

	subj, err := repo.Get(subject)
	if err != nil {
		return nil, err
	}
	if subj == nil {
		return nil, &NotFoundError{ID: subject}
	}

	for _, id := range add {
		if id == subject {
			return nil, &CycleError{From: subject, To: subject}
		}
		dep, err := repo.Get(id)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			return nil, &NotFoundError{ID: id}
		}
	}

	for _, id := range add {
		cyclic, err := WouldCycle(repo, subject, id)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, &CycleError{From: subject, To: id}
		}
	}

	// Commit the forward list. Adds are applied before removes, so an id
	// present in both ends up absent.
	var result []int
	err = repo.Update(subject, func(meta *issue.Metadata) {
		for _, id := range add {
			if !containsInt(meta.DependsOn, id) {
				meta.DependsOn = append(meta.DependsOn, id)
			}
		}
		if len(remove) > 0 {
			meta.DependsOn = withoutInts(meta.DependsOn, remove)
		}
		sort.Ints(meta.DependsOn)
		result = append([]int(nil), meta.DependsOn...)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", issue.Ref(subject), err)
	}

	for _, id := range add {
		err := repo.Update(id, func(meta *issue.Metadata) {
			if !containsInt(meta.Blocks, subject) {
				meta.Blocks = append(meta.Blocks, subject)
				sort.Ints(meta.Blocks)
			}
		})
		if err != nil {
			return result, &PartialWriteError{ID: id, DependsOn: result, Err: err}
		}
	}

	for _, id := range remove {
		// Removing a dependency on an id that no longer exists is a no-op.
		dep, err := repo.Get(id)
		if err != nil {
			return result, &PartialWriteError{ID: id, DependsOn: result, Err: err}
		}
		if dep == nil {
			continue
		}
		err = repo.Update(id, func(meta *issue.Metadata) {
			meta.Blocks = withoutInts(meta.Blocks, []int{subject})
		})
		if err != nil {
			return result, &PartialWriteError{ID: id, DependsOn: result, Err: err}
		}
	}

	return result, nil
}

func withoutInts(list, drop []int) []int {
	out := list[:0]
	for _, v := range list {
		if !containsInt(drop, v) {
			out = append(out, v)
		}
	}
	return out
}
