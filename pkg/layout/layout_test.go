package layout

import "testing"

func TestRoleForDefaultFirstPage(t *testing.T) {
	ctx := Context{FirstPage: true}

	tests := []struct {
		index    int
		expected Role
	}{
		{0, Featured},
		{1, Large},
		{2, Standard},
		{3, Standard},
		{4, Standard},
		{5, Standard},
		{6, Standard},
		{42, Standard},
		{-1, Standard},
	}

	for _, tt := range tests {
		if got := RoleFor(tt.index, ctx); got != tt.expected {
			t.Errorf("RoleFor(%d): expected %s, got %s", tt.index, tt.expected, got)
		}
	}
}

func TestRoleForUniformContexts(t *testing.T) {
	contexts := map[string]Context{
		"search":          {FirstPage: true, Search: true},
		"filtered":        {FirstPage: true, Filtered: true},
		"subsequent page": {FirstPage: false},
		"search page 2":   {Search: true},
	}

	for name, ctx := range contexts {
		t.Run(name, func(t *testing.T) {
			if ctx.Bento() {
				t.Fatalf("expected non-bento context")
			}
			for i := 0; i < 10; i++ {
				if got := RoleFor(i, ctx); got != Standard {
					t.Fatalf("index %d: expected standard, got %s", i, got)
				}
			}
		})
	}
}

func TestAssignShortList(t *testing.T) {
	ctx := Context{FirstPage: true}

	slots := Assign(3, ctx)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	want := []Role{Featured, Large, Standard}
	for i, s := range slots {
		if s.Index != i || s.Role != want[i] {
			t.Errorf("slot %d: expected {%d %s}, got {%d %s}", i, i, want[i], s.Index, s.Role)
		}
	}

	if got := Assign(0, ctx); got != nil {
		t.Errorf("expected no slots for empty list, got %v", got)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	ctx := Context{FirstPage: true}
	a := Assign(8, ctx)
	b := Assign(8, ctx)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs between passes: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRoleClass(t *testing.T) {
	if Featured.Class() != "card--featured" {
		t.Errorf("unexpected class %q", Featured.Class())
	}
	if Role(99).String() != "standard" {
		t.Errorf("unknown roles should render as standard")
	}
}
