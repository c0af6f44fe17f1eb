package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mwhitford/abacus/internal/storage"
	"github.com/mwhitford/abacus/internal/testutil"
)

// assertMirrored checks the depends_on/blocks symmetry invariant across the
// whole store.
func assertMirrored(t *testing.T, repo Repository) {
	t.Helper()
	v, err := Load(repo)
	if err != nil {
		t.Fatalf("load view: %v", err)
	}
	if violations := v.MirrorViolations(); len(violations) > 0 {
		t.Errorf("depends_on/blocks mirror broken: %+v", violations)
	}
}

func dependsOn(t *testing.T, repo Repository, id int) []int {
	t.Helper()
	iss, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get %d: %v", id, err)
	}
	if iss == nil {
		t.Fatalf("issue %d missing", id)
	}
	return iss.Meta.DependsOn
}

func blocks(t *testing.T, repo Repository, id int) []int {
	t.Helper()
	iss, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get %d: %v", id, err)
	}
	if iss == nil {
		t.Fatalf("issue %d missing", id)
	}
	return iss.Meta.Blocks
}

func TestApply_AddAndRemove(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil, 2: nil, 3: nil})

	result, err := Apply(store, 1, []int{3, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(result, []int{2, 3}) {
		t.Errorf("depends_on = %v, want [2 3] (sorted)", result)
	}
	if got := blocks(t, store, 2); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("blocks(2) = %v, want [1]", got)
	}
	if got := blocks(t, store, 3); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("blocks(3) = %v, want [1]", got)
	}
	assertMirrored(t, store)

	result, err = Apply(store, 1, nil, []int{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(result, []int{3}) {
		t.Errorf("depends_on = %v, want [3]", result)
	}
	if got := blocks(t, store, 2); len(got) != 0 {
		t.Errorf("blocks(2) = %v, want empty", got)
	}
	assertMirrored(t, store)
}

func TestApply_Idempotent(t *testing.T) {
	// Re-adding a present edge and removing an absent one change nothing.
	store := testutil.SeedStore(map[int][]int{1: {2}, 2: nil})

	result, err := Apply(store, 1, []int{2}, nil)
	if err != nil {
		t.Fatalf("re-add errored: %v", err)
	}
	if !reflect.DeepEqual(result, []int{2}) {
		t.Errorf("depends_on = %v, want [2]", result)
	}
	if got := blocks(t, store, 2); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("blocks(2) = %v, want [1] (no duplicate)", got)
	}

	result, err = Apply(store, 2, nil, []int{1})
	if err != nil {
		t.Fatalf("remove of absent edge errored: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("depends_on = %v, want empty", result)
	}
	assertMirrored(t, store)
}

func TestApply_AddThenRemoveSameID(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil, 2: nil})

	// Removes run after adds, so an id in both ends up absent.
	result, err := Apply(store, 1, []int{2}, []int{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("depends_on = %v, want empty", result)
	}
	if got := blocks(t, store, 2); len(got) != 0 {
		t.Errorf("blocks(2) = %v, want empty", got)
	}
	assertMirrored(t, store)
}

func TestApply_EmptyRequest(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil})

	if _, err := Apply(store, 1, nil, nil); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("expected ErrEmptyRequest, got %v", err)
	}
}

func TestApply_SelfDependency(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil})

	_, err := Apply(store, 1, []int{1}, nil)
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if cycleErr.From != 1 || cycleErr.To != 1 {
		t.Errorf("CycleError = %+v, want From=1 To=1", cycleErr)
	}
	if got := dependsOn(t, store, 1); len(got) != 0 {
		t.Errorf("depends_on = %v, want unchanged empty", got)
	}
}

func TestApply_SubjectNotFound(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil})

	_, err := Apply(store, 42, []int{1}, nil)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.ID != 42 {
		t.Errorf("NotFoundError.ID = %d, want 42", nfErr.ID)
	}
}

func TestApply_DependencyNotFound(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil, 2: nil})

	_, err := Apply(store, 1, []int{2, 99}, nil)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.ID != 99 {
		t.Errorf("NotFoundError.ID = %d, want 99", nfErr.ID)
	}

	// The whole request aborts: the valid candidate was not committed.
	if got := dependsOn(t, store, 1); len(got) != 0 {
		t.Errorf("depends_on = %v, want unchanged empty", got)
	}
	if got := blocks(t, store, 2); len(got) != 0 {
		t.Errorf("blocks(2) = %v, want unchanged empty", got)
	}
}

func TestApply_CycleRejectedAtomically(t *testing.T) {
	// 1 depends on 2 transitively through 3; adding "2 depends on 1" must
	// fail and leave both edge lists untouched.
	store := testutil.SeedStore(map[int][]int{
		1: {3},
		3: {2},
		2: nil,
		4: nil,
	})

	_, err := Apply(store, 2, []int{4, 1}, nil)
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if cycleErr.From != 2 || cycleErr.To != 1 {
		t.Errorf("CycleError = %+v, want From=2 To=1", cycleErr)
	}

	// No partial effect: the passing candidate 4 was not committed either.
	if got := dependsOn(t, store, 2); len(got) != 0 {
		t.Errorf("depends_on(2) = %v, want unchanged empty", got)
	}
	if got := blocks(t, store, 4); len(got) != 0 {
		t.Errorf("blocks(4) = %v, want unchanged empty", got)
	}
	if got := blocks(t, store, 1); len(got) != 0 {
		t.Errorf("blocks(1) = %v, want unchanged empty", got)
	}
	assertMirrored(t, store)
}

func TestApply_MirrorHoldsAcrossSequences(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil, 2: nil, 3: nil, 4: nil})

	steps := []struct {
		subject     int
		add, remove []int
	}{
		{1, []int{2, 3}, nil},
		{4, []int{1}, nil},
		{1, []int{4}, nil}, // rejected: cycle
		{1, nil, []int{3}},
		{4, []int{2}, []int{1}},
		{2, []int{3}, nil},
	}

	for _, step := range steps {
		_, err := Apply(store, step.subject, step.add, step.remove)
		var cycleErr *CycleError
		if err != nil && !errors.As(err, &cycleErr) {
			t.Fatalf("apply(%d, %v, %v): %v", step.subject, step.add, step.remove, err)
		}
	}

	assertMirrored(t, store)
}

func TestApply_PartialWriteSurfaced(t *testing.T) {
	store := testutil.SeedStore(map[int][]int{1: nil, 2: nil})
	writeErr := errors.New("disk full")
	store.FailUpdate = map[int]error{2: writeErr}

	result, err := Apply(store, 1, []int{2}, nil)

	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if partial.ID != 2 {
		t.Errorf("PartialWriteError.ID = %d, want 2", partial.ID)
	}
	if !errors.Is(err, writeErr) {
		t.Error("PartialWriteError should wrap the underlying cause")
	}

	// The subject's committed forward list is returned alongside the error.
	if !reflect.DeepEqual(result, []int{2}) {
		t.Errorf("committed depends_on = %v, want [2]", result)
	}
	if !reflect.DeepEqual(partial.DependsOn, []int{2}) {
		t.Errorf("PartialWriteError.DependsOn = %v, want [2]", partial.DependsOn)
	}

	// Retry after the fault clears is safe and repairs the mirror.
	store.FailUpdate = nil
	if _, err := Apply(store, 1, []int{2}, nil); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	assertMirrored(t, store)
}

// Guards against accidental interface drift: both stores must satisfy the
// graph's Repository seam.
var (
	_ Repository = (*storage.MemStore)(nil)
	_ Repository = (*storage.FileStore)(nil)
)
