package template

// node is an expression AST node. Nodes are immutable once parsed and hold no
// references into any Context, so a parsed expression may be cached and
// evaluated concurrently.
type node interface {
	pos() int
}

// literalNode holds an embedded constant value.
type literalNode struct {
	at  int
	val Value
}

// varNode references a variable by name, resolved against the scope chain.
type varNode struct {
	at   int
	name string
}

// getAttrNode accesses a named field of its base, as in a.b.
type getAttrNode struct {
	at   int
	base node
	name string
}

// getIndexNode accesses a computed index of its base, as in a[expr]. The
// index expression may itself be arbitrary.
type getIndexNode struct {
	at    int
	base  node
	index node
}

// unaryNode is a prefix operator application (not).
type unaryNode struct {
	at      int
	op      string
	operand node
}

// binaryNode is an infix operator application: and, or, the comparison
// operators, and the membership tests in / not in.
type binaryNode struct {
	at    int
	op    string
	left  node
	right node
}

// testNode is an "is" test, as in x is defined or x is not none.
type testNode struct {
	at      int
	operand node
	test    string
	negated bool
}

// listNode is a list literal.
type listNode struct {
	at    int
	items []node
}

// filterNode applies a named filter to its input; the input value becomes the
// filter's first argument.
type filterNode struct {
	at    int
	input node
	name  string
	args  []node
}

// callNode invokes a named function with positional arguments.
type callNode struct {
	at   int
	name string
	args []node
}

func (n *literalNode) pos() int  { return n.at }
func (n *varNode) pos() int      { return n.at }
func (n *getAttrNode) pos() int  { return n.at }
func (n *getIndexNode) pos() int { return n.at }
func (n *unaryNode) pos() int    { return n.at }
func (n *binaryNode) pos() int   { return n.at }
func (n *testNode) pos() int     { return n.at }
func (n *listNode) pos() int     { return n.at }
func (n *filterNode) pos() int   { return n.at }
func (n *callNode) pos() int     { return n.at }
