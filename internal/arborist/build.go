package arborist

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// builder walks a tree-sitter CST and produces the arborist's own Node
// tree, assigning every Node a monotonically increasing ID in the same
// pre-order the teacher's scala/parser.go walk assigns symbol positions.
type builder struct {
	source []byte
	nextID int
	nodes  map[int]*Node
}

func newBuilder(source []byte) *builder {
	return &builder{source: source, nodes: make(map[int]*Node)}
}

func (b *builder) alloc(kind Kind, sn *sitter.Node) *Node {
	b.nextID++
	n := &Node{
		ID:        b.nextID,
		Kind:      kind,
		StartByte: sn.StartByte(),
		EndByte:   sn.EndByte(),
		Raw:       sn.Content(b.source),
	}
	b.nodes[n.ID] = n
	return n
}

func (b *builder) build(sn *sitter.Node, parent *Node) *Node {
	if sn == nil {
		return nil
	}
	n := b.dispatch(sn)
	if n == nil {
		return nil
	}
	n.Parent = parent
	return n
}

// dispatch is the tree-sitter-javascript type() switch. Anything not
// listed falls back to an Opaque leaf that prints its own verbatim source
// — the escape hatch for syntax the closed Kind set does not cover
// every grammar production, only the ones a rewrite pass can target.
func (b *builder) dispatch(sn *sitter.Node) *Node {
	switch sn.Type() {
	case "program":
		n := b.alloc(KindProgram, sn)
		n.Scope = newScope(n, nil, true)
		n.Body = b.buildStatementList(sn, n)
		return n

	case "expression_statement":
		n := b.alloc(KindExpressionStatement, sn)
		n.Expression = b.build(firstNamed(sn), n)
		return n

	case "empty_statement":
		return b.alloc(KindEmptyStatement, sn)

	case "statement_block":
		n := b.alloc(KindBlockStatement, sn)
		n.Scope = newScope(n, nil, false)
		n.Body = b.buildStatementList(sn, n)
		return n

	case "variable_declaration", "lexical_declaration":
		n := b.alloc(KindVariableDeclaration, sn)
		n.DeclKind = declarationKind(sn)
		for _, c := range namedChildren(sn) {
			if c.Type() == "variable_declarator" {
				n.Declarations = append(n.Declarations, b.build(c, n))
			}
		}
		return n

	case "variable_declarator":
		n := b.alloc(KindVariableDeclarator, sn)
		n.TargetID = b.build(fieldOrFirst(sn, "name"), n)
		n.Init = b.build(sn.ChildByFieldName("value"), n)
		return n

	case "return_statement":
		n := b.alloc(KindReturnStatement, sn)
		n.Argument = b.build(firstNamed(sn), n)
		return n

	case "throw_statement":
		n := b.alloc(KindThrowStatement, sn)
		n.Argument = b.build(firstNamed(sn), n)
		return n

	case "break_statement":
		n := b.alloc(KindBreakStatement, sn)
		n.Label = b.build(firstNamed(sn), n)
		return n

	case "continue_statement":
		n := b.alloc(KindContinueStatement, sn)
		n.Label = b.build(firstNamed(sn), n)
		return n

	case "if_statement":
		n := b.alloc(KindIfStatement, sn)
		n.Test = b.build(sn.ChildByFieldName("condition"), n)
		n.Consequent = b.build(sn.ChildByFieldName("consequence"), n)
		if alt := sn.ChildByFieldName("alternative"); alt != nil {
			n.Alternate = b.build(unwrapElseClause(alt), n)
		}
		return n

	case "while_statement":
		n := b.alloc(KindWhileStatement, sn)
		n.Test = b.build(sn.ChildByFieldName("condition"), n)
		n.LoopBody = b.build(sn.ChildByFieldName("body"), n)
		return n

	case "do_statement":
		n := b.alloc(KindDoWhileStatement, sn)
		n.LoopBody = b.build(sn.ChildByFieldName("body"), n)
		n.Test = b.build(sn.ChildByFieldName("condition"), n)
		return n

	case "for_statement":
		n := b.alloc(KindForStatement, sn)
		n.ForInit = b.build(sn.ChildByFieldName("initializer"), n)
		n.ForTest = b.build(sn.ChildByFieldName("condition"), n)
		n.ForUpdate = b.build(sn.ChildByFieldName("increment"), n)
		n.LoopBody = b.build(sn.ChildByFieldName("body"), n)
		return n

	case "for_in_statement":
		kind := KindForInStatement
		for i := 0; i < int(sn.ChildCount()); i++ {
			if c := sn.Child(i); c != nil && c.Type() == "of" {
				kind = KindForOfStatement
			}
		}
		n := b.alloc(kind, sn)
		n.ForLeft = b.build(sn.ChildByFieldName("left"), n)
		n.ForRight = b.build(sn.ChildByFieldName("right"), n)
		n.LoopBody = b.build(sn.ChildByFieldName("body"), n)
		return n

	case "switch_statement":
		n := b.alloc(KindSwitchStatement, sn)
		n.Discriminant = b.build(sn.ChildByFieldName("value"), n)
		if body := sn.ChildByFieldName("body"); body != nil {
			for _, c := range namedChildren(body) {
				if c.Type() == "switch_case" || c.Type() == "switch_default" {
					n.Cases = append(n.Cases, b.build(c, n))
				}
			}
		}
		return n

	case "switch_case":
		n := b.alloc(KindSwitchCase, sn)
		n.Test = b.build(sn.ChildByFieldName("value"), n)
		n.Body = b.buildCaseBody(sn, n)
		return n

	case "switch_default":
		n := b.alloc(KindSwitchCase, sn)
		n.Body = b.buildCaseBody(sn, n)
		return n

	case "try_statement":
		n := b.alloc(KindTryStatement, sn)
		n.TryBlock = b.build(sn.ChildByFieldName("body"), n)
		n.Handler = b.build(sn.ChildByFieldName("handler"), n)
		if fin := sn.ChildByFieldName("finalizer"); fin != nil {
			n.Finalizer = b.build(fin.ChildByFieldName("body"), n)
		}
		return n

	case "catch_clause":
		n := b.alloc(KindCatchClause, sn)
		n.CatchParm = b.build(sn.ChildByFieldName("parameter"), n)
		n.FuncBody = b.build(sn.ChildByFieldName("body"), n)
		n.Scope = newScope(n, nil, false)
		return n

	case "labeled_statement":
		n := b.alloc(KindLabeledStatement, sn)
		n.Label = b.build(sn.ChildByFieldName("label"), n)
		n.LabeledBody = b.build(lastNamed(sn), n)
		return n

	case "function_declaration", "generator_function_declaration":
		n := b.alloc(KindFunctionDeclaration, sn)
		b.buildFunctionParts(sn, n)
		return n

	case "function", "function_expression", "generator_function":
		n := b.alloc(KindFunctionExpression, sn)
		b.buildFunctionParts(sn, n)
		return n

	case "arrow_function":
		n := b.alloc(KindArrowFunctionExpression, sn)
		n.Params = b.buildParams(sn)
		body := sn.ChildByFieldName("body")
		n.FuncBody = b.build(body, n)
		n.ExpressionBody = body != nil && body.Type() != "statement_block"
		n.Async = hasChildOfType(sn, "async")
		n.Scope = newScope(n, nil, true)
		return n

	case "call_expression":
		n := b.alloc(KindCallExpression, sn)
		n.Callee = b.build(sn.ChildByFieldName("function"), n)
		n.Arguments = b.buildArgumentList(sn.ChildByFieldName("arguments"), n)
		return n

	case "new_expression":
		n := b.alloc(KindNewExpression, sn)
		n.Callee = b.build(sn.ChildByFieldName("constructor"), n)
		n.Arguments = b.buildArgumentList(sn.ChildByFieldName("arguments"), n)
		return n

	case "member_expression":
		n := b.alloc(KindMemberExpression, sn)
		n.Object = b.build(sn.ChildByFieldName("object"), n)
		if prop := sn.ChildByFieldName("property"); prop != nil {
			propNode := b.alloc(KindIdentifier, prop)
			propNode.Name = prop.Content(b.source)
			propNode.Parent = n
			n.Property = propNode
		}
		n.Computed = false
		return n

	case "subscript_expression":
		n := b.alloc(KindMemberExpression, sn)
		n.Object = b.build(sn.ChildByFieldName("object"), n)
		n.Property = b.build(sn.ChildByFieldName("index"), n)
		n.Computed = true
		return n

	case "assignment_expression":
		n := b.alloc(KindAssignmentExpression, sn)
		n.Operator = "="
		n.Left = b.build(sn.ChildByFieldName("left"), n)
		n.Right = b.build(sn.ChildByFieldName("right"), n)
		return n

	case "augmented_assignment_expression":
		n := b.alloc(KindAssignmentExpression, sn)
		if op := sn.ChildByFieldName("operator"); op != nil {
			n.Operator = op.Content(b.source)
		}
		n.Left = b.build(sn.ChildByFieldName("left"), n)
		n.Right = b.build(sn.ChildByFieldName("right"), n)
		return n

	case "binary_expression":
		op := fieldText(sn, "operator", b.source)
		if op == "&&" || op == "||" || op == "??" {
			n := b.alloc(KindLogicalExpression, sn)
			n.Operator = op
			n.Left = b.build(sn.ChildByFieldName("left"), n)
			n.Right = b.build(sn.ChildByFieldName("right"), n)
			return n
		}
		n := b.alloc(KindBinaryExpression, sn)
		n.Operator = op
		n.Left = b.build(sn.ChildByFieldName("left"), n)
		n.Right = b.build(sn.ChildByFieldName("right"), n)
		return n

	case "unary_expression":
		n := b.alloc(KindUnaryExpression, sn)
		n.Operator = fieldText(sn, "operator", b.source)
		n.Argument = b.build(sn.ChildByFieldName("argument"), n)
		return n

	case "update_expression":
		n := b.alloc(KindUpdateExpression, sn)
		arg := sn.ChildByFieldName("argument")
		n.Argument = b.build(arg, n)
		for i := 0; i < int(sn.ChildCount()); i++ {
			c := sn.Child(i)
			if c != nil && (c.Type() == "++" || c.Type() == "--") {
				n.Operator = c.Type()
				n.Prefix = arg != nil && c.StartByte() < arg.StartByte()
			}
		}
		return n

	case "ternary_expression":
		n := b.alloc(KindConditionalExpression, sn)
		n.Test = b.build(sn.ChildByFieldName("condition"), n)
		n.Consequent = b.build(sn.ChildByFieldName("consequence"), n)
		n.Alternate = b.build(sn.ChildByFieldName("alternative"), n)
		return n

	case "sequence_expression":
		n := b.alloc(KindSequenceExpression, sn)
		left := b.build(sn.ChildByFieldName("left"), n)
		right := b.build(sn.ChildByFieldName("right"), n)
		n.Expressions = flattenSequence(left, right)
		return n

	case "parenthesized_expression":
		return b.build(firstNamed(sn), nil)

	case "array":
		n := b.alloc(KindArrayExpression, sn)
		for _, c := range namedChildren(sn) {
			n.Body = append(n.Body, b.build(c, n))
		}
		return n

	case "object":
		n := b.alloc(KindObjectExpression, sn)
		for _, c := range namedChildren(sn) {
			n.Body = append(n.Body, b.build(c, n))
		}
		return n

	case "pair":
		n := b.alloc(KindProperty, sn)
		n.PropKind = "init"
		n.Key = b.build(sn.ChildByFieldName("key"), n)
		n.Value = b.build(sn.ChildByFieldName("value"), n)
		return n

	case "shorthand_property_identifier":
		n := b.alloc(KindProperty, sn)
		n.PropKind = "init"
		n.Shorthand = true
		id := b.alloc(KindIdentifier, sn)
		id.Name = sn.Content(b.source)
		id.Parent = n
		n.Key = id
		n.Value = id
		return n

	case "spread_element":
		n := b.alloc(KindSpreadElement, sn)
		n.Operator = "..."
		n.Argument = b.build(firstNamed(sn), n)
		return n

	case "identifier", "property_identifier":
		n := b.alloc(KindIdentifier, sn)
		n.Name = sn.Content(b.source)
		return n

	case "this":
		n := b.alloc(KindThisExpression, sn)
		n.Name = "this"
		return n

	case "number":
		n := b.alloc(KindLiteral, sn)
		n.LiteralType = literalNumber
		n.NumValue = parseNumericLiteral(sn.Content(b.source))
		return n

	case "string":
		n := b.alloc(KindLiteral, sn)
		n.LiteralType = literalString
		n.StrValue = decodeStringLiteral(sn.Content(b.source))
		return n

	case "true", "false":
		n := b.alloc(KindLiteral, sn)
		n.LiteralType = literalBoolean
		n.BoolValue = sn.Type() == "true"
		return n

	case "null":
		n := b.alloc(KindLiteral, sn)
		n.LiteralType = literalNull
		return n

	case "regex":
		n := b.alloc(KindRegExpLiteral, sn)
		n.Pattern, n.Flags = splitRegex(sn.Content(b.source))
		return n

	case "number_bigint", "bigint":
		return b.alloc(KindBigIntLiteral, sn)

	default:
		return b.alloc(KindOpaque, sn)
	}
}

func (b *builder) buildFunctionParts(sn *sitter.Node, n *Node) {
	if name := sn.ChildByFieldName("name"); name != nil {
		id := b.alloc(KindIdentifier, name)
		id.Name = name.Content(b.source)
		id.Parent = n
		n.FuncName = id
	}
	n.Params = b.buildParams(sn)
	n.FuncBody = b.build(sn.ChildByFieldName("body"), n)
	n.Async = hasChildOfType(sn, "async")
	n.Generator = hasChildOfType(sn, "*")
	n.Scope = newScope(n, nil, true)
}

func (b *builder) buildParams(sn *sitter.Node) []*Node {
	params := sn.ChildByFieldName("parameters")
	if params == nil {
		// arrow function with a single bare identifier parameter
		if p := sn.ChildByFieldName("parameter"); p != nil {
			return []*Node{b.build(p, nil)}
		}
		return nil
	}
	var out []*Node
	for _, c := range namedChildren(params) {
		out = append(out, b.build(c, nil))
	}
	return out
}

func (b *builder) buildArgumentList(args *sitter.Node, parent *Node) []*Node {
	if args == nil {
		return nil
	}
	var out []*Node
	for _, c := range namedChildren(args) {
		out = append(out, b.build(c, parent))
	}
	return out
}

func (b *builder) buildStatementList(sn *sitter.Node, parent *Node) []*Node {
	var out []*Node
	for _, c := range namedChildren(sn) {
		if node := b.build(c, parent); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (b *builder) buildCaseBody(sn *sitter.Node, parent *Node) []*Node {
	var out []*Node
	seenColon := false
	for i := 0; i < int(sn.ChildCount()); i++ {
		c := sn.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == ":" {
			seenColon = true
			continue
		}
		if !seenColon || !c.IsNamed() {
			continue
		}
		out = append(out, b.build(c, parent))
	}
	return out
}

// --- tree-sitter helpers -----------------------------------------------

func namedChildren(sn *sitter.Node) []*sitter.Node {
	if sn == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, sn.NamedChildCount())
	for i := 0; i < int(sn.NamedChildCount()); i++ {
		out = append(out, sn.NamedChild(i))
	}
	return out
}

func firstNamed(sn *sitter.Node) *sitter.Node {
	if sn == nil || sn.NamedChildCount() == 0 {
		return nil
	}
	return sn.NamedChild(0)
}

func lastNamed(sn *sitter.Node) *sitter.Node {
	if sn == nil || sn.NamedChildCount() == 0 {
		return nil
	}
	return sn.NamedChild(int(sn.NamedChildCount()) - 1)
}

func fieldOrFirst(sn *sitter.Node, field string) *sitter.Node {
	if f := sn.ChildByFieldName(field); f != nil {
		return f
	}
	return firstNamed(sn)
}

func fieldText(sn *sitter.Node, field string, source []byte) string {
	if f := sn.ChildByFieldName(field); f != nil {
		return f.Content(source)
	}
	return ""
}

func hasChildOfType(sn *sitter.Node, t string) bool {
	for i := 0; i < int(sn.ChildCount()); i++ {
		if c := sn.Child(i); c != nil && c.Type() == t {
			return true
		}
	}
	return false
}

func declarationKind(sn *sitter.Node) string {
	if sn.ChildCount() == 0 {
		return "var"
	}
	switch sn.Child(0).Type() {
	case "let", "const", "var":
		return sn.Child(0).Type()
	}
	return "var"
}

// unwrapElseClause peels an "else_clause" wrapper node (used by
// if_statement's alternative field in tree-sitter-javascript) down to the
// statement it actually holds.
func unwrapElseClause(sn *sitter.Node) *sitter.Node {
	if sn.Type() == "else_clause" {
		return firstNamed(sn)
	}
	return sn
}

func flattenSequence(left, right *Node) []*Node {
	var out []*Node
	if left != nil && left.Kind == KindSequenceExpression {
		out = append(out, left.Expressions...)
	} else if left != nil {
		out = append(out, left)
	}
	if right != nil {
		out = append(out, right)
	}
	return out
}

func parseNumericLiteral(text string) float64 {
	text = strings.ReplaceAll(text, "_", "")
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(i)
	}
	if u, err := strconv.ParseUint(strings.TrimPrefix(text, "0x"), 16, 64); err == nil {
		return float64(u)
	}
	return 0
}

func splitRegex(text string) (pattern, flags string) {
	last := strings.LastIndexByte(text, '/')
	if last <= 0 {
		return text, ""
	}
	return text[1:last], text[last+1:]
}

// decodeStringLiteral strips the original quote characters and resolves
// the handful of escape sequences obfuscated code actually uses; it does
// not aim to be a complete ECMAScript string-literal grammar.
func decodeStringLiteral(text string) string {
	if len(text) < 2 {
		return text
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i == len(body)-1 {
			sb.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')
		case '`':
			sb.WriteByte('`')
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
