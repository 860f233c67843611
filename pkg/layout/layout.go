// Package layout assigns presentation roles to positions in a rendered
// title grid.
//
// Only the first page of the default listing (no search text, no kind or
// genre filter) gets the tiered "bento" arrangement: a full-width featured
// hero, one tall large card and a quartet of standard cards. Every other
// context renders a uniform grid of standard cards. Assignment is a pure
// function of (index, context) and is recomputed on every render.
package layout

// Role is the presentation role of a grid slot.
type Role int

const (
	Standard Role = iota
	Large
	Featured
)

func (r Role) String() string {
	switch r {
	case Featured:
		return "featured"
	case Large:
		return "large"
	}
	return "standard"
}

// Class returns the CSS class used by the web templates for the role.
func (r Role) Class() string {
	return "card--" + r.String()
}

// Context describes the listing being rendered.
type Context struct {
	// FirstPage is true when the rendered range starts at page 1.
	FirstPage bool
	// Search is true when the list comes from a text search.
	Search bool
	// Filtered is true when a kind or genre filter is active.
	Filtered bool
}

// Bento reports whether the tiered arrangement applies.
func (c Context) Bento() bool {
	return c.FirstPage && !c.Search && !c.Filtered
}

// Number of leading slots that take part in the tiered block.
const bentoSlots = 6

// RoleFor returns the role of the slot at index.
func RoleFor(index int, ctx Context) Role {
	if !ctx.Bento() || index < 0 || index >= bentoSlots {
		return Standard
	}
	switch index {
	case 0:
		return Featured
	case 1:
		return Large
	}
	return Standard
}

// Slot pairs a position with its role.
type Slot struct {
	Index int
	Role  Role
}

// Assign returns one slot per index in [0, n). A short list simply yields
// fewer slots.
func Assign(n int, ctx Context) []Slot {
	if n <= 0 {
		return nil
	}
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Index: i, Role: RoleFor(i, ctx)}
	}
	return slots
}
