package testtree

// Item is one argument to Run.T: a case, a group (*Node) or a List of
// further items.
type Item interface {
	isItem()
}

// CaseFunc is a test case body.
type CaseFunc func(s *Scratch) Outcome

type caseItem struct {
	fn CaseFunc
}

func (caseItem) isItem() {}

func (*Node) isItem() {}

// List nests items. Lists are flattened in order before a node processes
// its arguments.
type List []Item

func (List) isItem() {}

// Case is a synchronous test case. A non-nil error or a panic fails it.
func Case(fn func(s *Scratch) error) Item {
	return caseItem{fn: func(s *Scratch) Outcome {
		return Done(fn(s))
	}}
}

// Await is a test case that may settle later by returning a Pending
// outcome.
func Await(fn CaseFunc) Item {
	return caseItem{fn: fn}
}

// Flatten expands every List in items, recursively, preserving order.
// Nil items are dropped.
func Flatten(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
		case List:
			out = append(out, Flatten(v)...)
		case *Node:
			if v != nil {
				out = append(out, v)
			}
		default:
			out = append(out, v)
		}
	}
	return out
}
