package encoder

// Params accumulates the values bound to a prepared statement. One Params is
// shared by every encoder contributing to the same statement so that
// placeholder numbering follows the statement text.
type Params struct {
	values []any
}

// NewParams creates an empty parameter list
func NewParams() *Params {
	return &Params{}
}

// Add appends a value and returns its 1-based position
func (p *Params) Add(v any) int {
	p.values = append(p.values, v)
	return len(p.values)
}

// Values returns the bound values in placeholder order
func (p *Params) Values() []any {
	if p == nil {
		return nil
	}
	out := make([]any, len(p.values))
	copy(out, p.values)
	return out
}

// Len returns the number of bound values
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}
