package recipe

import "testing"

func TestAppendSaved(t *testing.T) {
	saved := []Recipe{{ID: "r1", Name: "Tortilla"}}

	saved, appended := AppendSaved(saved, Recipe{ID: "r2", Name: "Gazpacho"})
	if !appended || len(saved) != 2 {
		t.Fatalf("expected r2 to be appended, got %v (len %d)", appended, len(saved))
	}

	saved, appended = AppendSaved(saved, Recipe{ID: "r1", Name: "Tortilla de patatas"})
	if appended {
		t.Error("expected duplicate to be rejected")
	}
	if len(saved) != 2 {
		t.Errorf("expected length 2, got %d", len(saved))
	}
	if saved[0].Name != "Tortilla" {
		t.Errorf("existing snapshot should be kept, got %q", saved[0].Name)
	}
}

func TestRemoveSaved(t *testing.T) {
	saved := []Recipe{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}}

	out, removed := RemoveSaved(saved, "r2")
	if !removed {
		t.Fatal("expected r2 to be removed")
	}
	if !equalIDs(ids(out), []string{"r1", "r3"}) {
		t.Errorf("unexpected result %v", ids(out))
	}
	if !equalIDs(ids(saved), []string{"r1", "r2", "r3"}) {
		t.Errorf("input should not be modified, got %v", ids(saved))
	}

	out, removed = RemoveSaved(out, "missing")
	if removed || len(out) != 2 {
		t.Errorf("expected no-op, got removed=%v len=%d", removed, len(out))
	}
}

func TestCanDelete(t *testing.T) {
	r := Recipe{ID: "r1", OwnerID: "ana"}
	if !CanDelete(r, "ana") {
		t.Error("owner should be able to delete")
	}
	if CanDelete(r, "luis") {
		t.Error("non-owner should not be able to delete")
	}
	if CanDelete(Recipe{ID: "r2"}, "") {
		t.Error("anonymous callers should not be able to delete")
	}
}
