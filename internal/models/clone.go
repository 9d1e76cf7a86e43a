package models

// Clone returns a deep copy of the document. Nil and empty slices are kept
// apart so the JSON form of the copy is identical to the original.
func (s AppState) Clone() AppState {
	out := s
	out.Categories = cloneSlice(s.Categories)
	out.Items = cloneSlice(s.Items)
	out.SelectedIDs = cloneSlice(s.SelectedIDs)
	out.Fruit = cloneFruit(s.Fruit)
	out.SupplierNames = cloneSlice(s.SupplierNames)
	out.Templates = cloneSlice(s.Templates)
	for i := range out.Templates {
		out.Templates[i].SelectedIDs = cloneSlice(out.Templates[i].SelectedIDs)
	}
	out.Archives = cloneSlice(s.Archives)
	for i := range out.Archives {
		out.Archives[i] = out.Archives[i].Clone()
	}
	out.Users = cloneSlice(s.Users)
	if s.CurrentUser != nil {
		cu := *s.CurrentUser
		out.CurrentUser = &cu
	}
	return out
}

// Clone returns a deep copy of the archive.
func (a Archive) Clone() Archive {
	a.SelectedIDs = cloneSlice(a.SelectedIDs)
	a.Items = cloneSlice(a.Items)
	a.Fruit = cloneFruit(a.Fruit)
	return a
}

// Clone returns a deep copy of the row.
func (f FruitRow) Clone() FruitRow {
	f.Prices = cloneSlice(f.Prices)
	f.History = cloneSlice(f.History)
	return f
}

func cloneFruit(rows []FruitRow) []FruitRow {
	out := cloneSlice(rows)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
