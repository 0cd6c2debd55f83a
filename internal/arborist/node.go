package arborist

// Node is the single flexible node type every construct in the tree is
// represented with, the same way a tree-sitter *sitter.Node is one struct
// for every grammar rule rather than a type per rule. Only the fields
// relevant to Kind are populated; the rest are left zero. Matching this
// single-struct shape against the "store nodes in a single
// indexed container" design note avoids a Go interface per ESTree type,
// which would make every pass a type-switch anyway.
type Node struct {
	ID   int
	Kind Kind

	// Raw is the verbatim source text for leaf-ish nodes (Identifier name
	// survives in Name instead, but Opaque, RegExpLiteral and
	// BigIntLiteral print themselves from Raw directly).
	Raw string

	StartByte uint32
	EndByte   uint32

	Parent *Node
	Scope  *Scope // non-nil only on nodes that introduce a scope

	// Program / BlockStatement / SwitchCase consequent.
	Body []*Node

	// Literal (string/number/boolean/null).
	LiteralType literalType
	StrValue    string
	NumValue    float64
	BoolValue   bool

	// RegExpLiteral.
	Pattern string
	Flags   string

	// Identifier / ThisExpression / Label.
	Name string

	// UnaryExpression / UpdateExpression / ReturnStatement /
	// ThrowStatement / SpreadElement.
	Operator string
	Argument *Node
	Prefix   bool

	// BinaryExpression / LogicalExpression / AssignmentExpression.
	Left  *Node
	Right *Node

	// SequenceExpression.
	Expressions []*Node

	// ConditionalExpression / IfStatement.
	Test       *Node
	Consequent *Node
	Alternate  *Node

	// MemberExpression.
	Object   *Node
	Property *Node
	Computed bool

	// CallExpression / NewExpression.
	Callee    *Node
	Arguments []*Node

	// FunctionDeclaration / FunctionExpression / ArrowFunctionExpression.
	FuncName       *Node
	Params         []*Node
	FuncBody       *Node
	ExpressionBody bool
	Async          bool
	Generator      bool

	// VariableDeclaration.
	DeclKind     string
	Declarations []*Node

	// VariableDeclarator.
	TargetID *Node
	Init     *Node

	// ExpressionStatement.
	Expression *Node

	// ForStatement.
	ForInit   *Node
	ForTest   *Node
	ForUpdate *Node

	// ForInStatement / ForOfStatement.
	ForLeft  *Node
	ForRight *Node
	LoopBody *Node

	// SwitchStatement / SwitchCase.
	Discriminant *Node
	Cases        []*Node

	// TryStatement / CatchClause.
	TryBlock  *Node
	Handler   *Node
	Finalizer *Node
	CatchParm *Node

	// LabeledStatement.
	Label       *Node
	LabeledBody *Node

	// Property (ObjectExpression member).
	Key       *Node
	Value     *Node
	Shorthand bool
	PropKind  string // "init", "get" or "set"
}

// NewStringLiteral, NewNumberLiteral, NewBoolLiteral and NewNullLiteral
// construct Literal nodes from outside the package (the sandbox's
// literalisation step needs this — literalType and its constants are
// unexported since nothing outside this file should construct a Literal
// with an invalid LiteralType/value combination).
func NewStringLiteral(s string) *Node {
	return &Node{Kind: KindLiteral, LiteralType: literalString, StrValue: s}
}

func NewNumberLiteral(f float64) *Node {
	return &Node{Kind: KindLiteral, LiteralType: literalNumber, NumValue: f}
}

func NewBoolLiteral(b bool) *Node {
	return &Node{Kind: KindLiteral, LiteralType: literalBoolean, BoolValue: b}
}

func NewNullLiteral() *Node {
	return &Node{Kind: KindLiteral, LiteralType: literalNull}
}

// IsExpression reports whether n produces a value, as opposed to being a
// statement or a bare syntactic slot (Property, SwitchCase, ...). Passes
// use this to validate replacement nodes before staging a Mark.
func (n *Node) IsExpression() bool {
	switch n.Kind {
	case KindLiteral, KindRegExpLiteral, KindBigIntLiteral, KindIdentifier,
		KindThisExpression, KindArrayExpression, KindObjectExpression,
		KindUnaryExpression, KindUpdateExpression, KindBinaryExpression,
		KindLogicalExpression, KindAssignmentExpression, KindSequenceExpression,
		KindConditionalExpression, KindMemberExpression, KindCallExpression,
		KindNewExpression, KindFunctionExpression, KindArrowFunctionExpression:
		return true
	}
	return false
}

// IsLiteralLike reports whether n can be evaluated to a host value without
// a scope (the sandbox's literal-only input set): literals, and arrays/objects
// built entirely of literal-like elements.
func (n *Node) IsLiteralLike() bool {
	switch n.Kind {
	case KindLiteral, KindRegExpLiteral, KindBigIntLiteral:
		return true
	case KindArrayExpression:
		for _, el := range n.Body {
			if el == nil {
				continue
			}
			if !el.IsLiteralLike() {
				return false
			}
		}
		return true
	case KindObjectExpression:
		for _, p := range n.Body {
			if p.Kind != KindProperty || p.PropKind != "init" {
				return false
			}
			if !p.Value.IsLiteralLike() {
				return false
			}
		}
		return true
	case KindUnaryExpression:
		return n.Argument != nil && n.Argument.IsLiteralLike()
	case KindBinaryExpression, KindLogicalExpression:
		return n.Left != nil && n.Right != nil && n.Left.IsLiteralLike() && n.Right.IsLiteralLike()
	case KindSequenceExpression:
		for _, e := range n.Expressions {
			if !e.IsLiteralLike() {
				return false
			}
		}
		return true
	case KindConditionalExpression:
		return n.Test != nil && n.Test.IsLiteralLike() && n.Consequent != nil && n.Consequent.IsLiteralLike() &&
			n.Alternate != nil && n.Alternate.IsLiteralLike()
	}
	return false
}

// IsStringLiteral reports whether n is a Literal holding a string value.
func (n *Node) IsStringLiteral() bool {
	return n.Kind == KindLiteral && n.LiteralType == literalString
}

// Children returns every direct child slot that is non-nil, in source
// order, for generic traversal (scope resolution, the TypeMap index and the
// context collector all use this instead of a Kind-specific switch).
func (n *Node) Children() []*Node {
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	addAll := func(cs []*Node) {
		for _, c := range cs {
			add(c)
		}
	}

	addAll(n.Body)
	add(n.Argument)
	add(n.Left)
	add(n.Right)
	addAll(n.Expressions)
	add(n.Test)
	add(n.Consequent)
	add(n.Alternate)
	add(n.Object)
	add(n.Property)
	add(n.Callee)
	addAll(n.Arguments)
	add(n.FuncName)
	addAll(n.Params)
	add(n.FuncBody)
	addAll(n.Declarations)
	add(n.TargetID)
	add(n.Init)
	add(n.Expression)
	add(n.ForInit)
	add(n.ForTest)
	add(n.ForUpdate)
	add(n.ForLeft)
	add(n.ForRight)
	add(n.LoopBody)
	add(n.Discriminant)
	addAll(n.Cases)
	add(n.TryBlock)
	add(n.Handler)
	add(n.Finalizer)
	add(n.CatchParm)
	add(n.Label)
	add(n.LabeledBody)
	add(n.Key)
	add(n.Value)

	return out
}
