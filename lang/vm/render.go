package vm

import "github.com/mna/asterisk/lang/value"

// render produces Print's textual form of a primitive, unwrapping any
// Ref chain first: dereference semantics appear only at print/equality
// time (spec.md §4.5), so a printed &x shows x's value, not "ref(...)".
func render(p value.Primitive) string {
	for {
		r, ok := p.(*value.Ref)
		if !ok {
			return p.String()
		}
		p = r.Cell.V.Prim
	}
}
