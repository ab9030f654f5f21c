package engine

// exprNode is one node of a parsed formula.
type exprNode interface {
	// eval computes the node's numeric value using the resolved
	// identifier bindings.
	eval(vars map[string]float64) float64
}

// numberNode is a numeric literal.
type numberNode struct {
	value float64
}

func (n *numberNode) eval(map[string]float64) float64 {
	return n.value
}

// identNode is a reference to a column or previously-derived booking
// field. The name is lower-cased with single spaces between words.
type identNode struct {
	name string
}

func (n *identNode) eval(vars map[string]float64) float64 {
	return vars[n.name]
}

// unaryNode is a negation.
type unaryNode struct {
	operand exprNode
}

func (n *unaryNode) eval(vars map[string]float64) float64 {
	return -n.operand.eval(vars)
}

// binaryNode is one of the four arithmetic operations.
type binaryNode struct {
	op    tokenType // tokenPlus, tokenMinus, tokenStar, tokenSlash
	left  exprNode
	right exprNode
}

func (n *binaryNode) eval(vars map[string]float64) float64 {
	left := n.left.eval(vars)
	right := n.right.eval(vars)
	switch n.op {
	case tokenPlus:
		return left + right
	case tokenMinus:
		return left - right
	case tokenStar:
		return left * right
	default:
		return left / right
	}
}
