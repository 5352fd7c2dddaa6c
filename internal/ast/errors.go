package ast

import "fmt"

// Reason classifies structural errors.
type Reason int

const (
	// ClosedBeforeOpened is a close with no matching open on the cursor.
	ClosedBeforeOpened Reason = iota
	// ClosedOutOfOrder is a close whose open is blocked by another
	// unclosed node.
	ClosedOutOfOrder
	// BranchOutsideBlock is an elseif or else with no enclosing branch.
	BranchOutsideBlock
	// Unclosed is a construct still open at the end of input.
	Unclosed
)

func (r Reason) String() string {
	switch r {
	case ClosedBeforeOpened:
		return "closed before opened"
	case ClosedOutOfOrder:
		return "closed out of order"
	case BranchOutsideBlock:
		return "branch outside block"
	case Unclosed:
		return "unclosed"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// StructuralError reports tokens that do not nest into a tree.
type StructuralError struct {
	Reason Reason
	// Span locates the failing token, or the unclosed node.
	Span Span
	// Name describes the failing token.
	Name string
	// Blocking describes the node that prevented the match, if any.
	Blocking string
}

func (e *StructuralError) Error() string {
	switch e.Reason {
	case ClosedBeforeOpened:
		return fmt.Sprintf("attempting to close %s before it was opened", e.Name)
	case ClosedOutOfOrder:
		return fmt.Sprintf("attempting to close %s before %s was closed", e.Name, e.Blocking)
	case BranchOutsideBlock:
		return fmt.Sprintf("attempting to open %s outside of its owning block tag", e.Name)
	case Unclosed:
		return fmt.Sprintf("attempting to end parsing before %s was closed", e.Name)
	}
	return e.Reason.String()
}

// Offset returns the source offset the error points at.
func (e *StructuralError) Offset() int {
	return e.Span.Start
}

func describe(kind Kind, name string) string {
	return fmt.Sprintf("%s '%s'", kind, name)
}
