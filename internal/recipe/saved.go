package recipe

// AppendSaved appends snapshot to saved unless a recipe with the same ID
// is already present. It reports whether snapshot was appended.
func AppendSaved(saved []Recipe, snapshot Recipe) ([]Recipe, bool) {
	for _, r := range saved {
		if r.ID == snapshot.ID {
			return saved, false
		}
	}
	return append(saved, snapshot), true
}

// RemoveSaved removes the recipe with the given ID from saved. It reports
// whether anything was removed.
func RemoveSaved(saved []Recipe, id string) ([]Recipe, bool) {
	for i, r := range saved {
		if r.ID == id {
			out := make([]Recipe, 0, len(saved)-1)
			out = append(out, saved[:i]...)
			return append(out, saved[i+1:]...), true
		}
	}
	return saved, false
}

func SavedIDs(saved []Recipe) map[string]struct{} {
	ids := make(map[string]struct{}, len(saved))
	for _, r := range saved {
		ids[r.ID] = struct{}{}
	}
	return ids
}
