package arborist

// Kind is the closed set of node tags the arborist understands well enough
// to rewrite. It follows ESTree-ish naming rather than
// tree-sitter's own snake_case grammar node types; build.go is the
// translation layer between the two.
type Kind string

const (
	KindProgram                 Kind = "Program"
	KindLiteral                 Kind = "Literal"
	KindRegExpLiteral           Kind = "RegExpLiteral"
	KindBigIntLiteral           Kind = "BigIntLiteral"
	KindIdentifier              Kind = "Identifier"
	KindThisExpression          Kind = "ThisExpression"
	KindArrayExpression         Kind = "ArrayExpression"
	KindObjectExpression        Kind = "ObjectExpression"
	KindProperty                Kind = "Property"
	KindSpreadElement           Kind = "SpreadElement"
	KindUnaryExpression         Kind = "UnaryExpression"
	KindUpdateExpression        Kind = "UpdateExpression"
	KindBinaryExpression        Kind = "BinaryExpression"
	KindLogicalExpression       Kind = "LogicalExpression"
	KindAssignmentExpression    Kind = "AssignmentExpression"
	KindSequenceExpression      Kind = "SequenceExpression"
	KindConditionalExpression   Kind = "ConditionalExpression"
	KindMemberExpression        Kind = "MemberExpression"
	KindCallExpression          Kind = "CallExpression"
	KindNewExpression           Kind = "NewExpression"
	KindFunctionDeclaration     Kind = "FunctionDeclaration"
	KindFunctionExpression      Kind = "FunctionExpression"
	KindArrowFunctionExpression Kind = "ArrowFunctionExpression"
	KindVariableDeclaration     Kind = "VariableDeclaration"
	KindVariableDeclarator      Kind = "VariableDeclarator"
	KindExpressionStatement     Kind = "ExpressionStatement"
	KindBlockStatement          Kind = "BlockStatement"
	KindReturnStatement         Kind = "ReturnStatement"
	KindIfStatement             Kind = "IfStatement"
	KindForStatement            Kind = "ForStatement"
	KindForInStatement          Kind = "ForInStatement"
	KindForOfStatement          Kind = "ForOfStatement"
	KindWhileStatement          Kind = "WhileStatement"
	KindDoWhileStatement        Kind = "DoWhileStatement"
	KindSwitchStatement         Kind = "SwitchStatement"
	KindSwitchCase              Kind = "SwitchCase"
	KindTryStatement            Kind = "TryStatement"
	KindCatchClause             Kind = "CatchClause"
	KindThrowStatement          Kind = "ThrowStatement"
	KindBreakStatement          Kind = "BreakStatement"
	KindContinueStatement       Kind = "ContinueStatement"
	KindLabeledStatement        Kind = "LabeledStatement"
	KindEmptyStatement          Kind = "EmptyStatement"

	// KindOpaque is not part of the closed node-kind set; it is the escape
	// hatch for grammar this engine does not model (classes, template
	// literals, JSX, ...). Opaque nodes are never produced as
	// match candidates by any pass; they exist so real-world input
	// containing them still parses, traverses and prints instead of
	// aborting the whole pipeline.
	KindOpaque Kind = "Opaque"
)

// literalType distinguishes the primitive kinds folded under KindLiteral.
type literalType string

const (
	literalString  literalType = "string"
	literalNumber  literalType = "number"
	literalBoolean literalType = "boolean"
	literalNull    literalType = "null"
)

// mutatingProperties is the set of mutating-method property
// names whose invocation on an object mutates that object's content even
// though the call itself is not a plain assignment.
var mutatingProperties = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true,
	"copyWithin": true, "forEach": true, "insert": true, "add": true,
	"set": true, "delete": true,
}

// IsMutatingProperty reports whether name is one of the object-mutating
// names the context collector and the mutation analyzer check against.
func IsMutatingProperty(name string) bool {
	return mutatingProperties[name]
}
