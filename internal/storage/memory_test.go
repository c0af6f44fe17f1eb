package storage

import (
	"errors"
	"testing"

	"github.com/mwhitford/abacus/internal/issue"
)

func TestMemStore_CopiesOnTheWayOut(t *testing.T) {
	store := NewMemStore()
	store.Put(&issue.Issue{Meta: issue.Metadata{ID: 1, Title: "One", DependsOn: []int{2}}})

	got, err := store.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	got.Meta.DependsOn[0] = 99

	again, _ := store.Get(1)
	if again.Meta.DependsOn[0] != 2 {
		t.Error("caller mutation leaked back into the store")
	}
}

func TestMemStore_FailUpdate(t *testing.T) {
	store := NewMemStore()
	store.Put(&issue.Issue{Meta: issue.Metadata{ID: 1, Title: "One"}})
	boom := errors.New("boom")
	store.FailUpdate = map[int]error{1: boom}

	err := store.Update(1, func(meta *issue.Metadata) { meta.Title = "changed" })
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	got, _ := store.Get(1)
	if got.Meta.Title != "One" {
		t.Error("mutation applied despite injected failure")
	}
}
