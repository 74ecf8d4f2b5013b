package geometry

import "github.com/rendis/langcanvas/pkg/schema"

// RectSelection tracks an in-progress rubber-band selection.
// The zero value is idle.
type RectSelection struct {
	active   bool
	additive bool
	origin   schema.Position
	current  schema.Position
	base     []string
}

// Begin starts a selection at p. In additive mode the ids in base stay selected
// and the rectangle's hits are added to them.
func (s *RectSelection) Begin(p schema.Position, additive bool, base []string) {
	s.active = true
	s.additive = additive
	s.origin = p
	s.current = p
	s.base = append([]string(nil), base...)
}

// Update moves the free corner of the rectangle.
func (s *RectSelection) Update(p schema.Position) {
	if s.active {
		s.current = p
	}
}

// Active reports whether a selection is in progress.
func (s *RectSelection) Active() bool {
	return s.active
}

// Rect returns the current selection rectangle.
func (s *RectSelection) Rect() Rect {
	return RectFromPoints(s.origin, s.current)
}

// Commit ends the selection and returns the selected ids. Hits are ordered as in
// ids; in additive mode they follow the base selection without duplicates.
func (s *RectSelection) Commit(layout LayoutQuery, ids []string) []string {
	if !s.active {
		return nil
	}
	hits := SelectInRect(layout, ids, s.Rect())
	defer s.reset()

	if !s.additive {
		return hits
	}
	out := append([]string(nil), s.base...)
	seen := make(map[string]bool, len(out))
	for _, id := range out {
		seen[id] = true
	}
	for _, id := range hits {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Cancel abandons the selection and returns the selection it started from.
func (s *RectSelection) Cancel() []string {
	base := s.base
	s.reset()
	return base
}

func (s *RectSelection) reset() {
	*s = RectSelection{}
}

// MoveNodes offsets the positions of the dragged ids by (dx, dy) and returns only
// the moved entries. Ids missing from positions are ignored.
func MoveNodes(positions map[string]schema.Position, ids []string, dx, dy float64) map[string]schema.Position {
	moved := make(map[string]schema.Position, len(ids))
	for _, id := range ids {
		p, ok := positions[id]
		if !ok {
			continue
		}
		moved[id] = schema.Position{X: p.X + dx, Y: p.Y + dy}
	}
	return moved
}
