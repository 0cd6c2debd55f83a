package arborist

import (
	"strconv"
	"strings"
)

// Print renders n canonically. It never tries to preserve the original
// byte ranges a node came from (source maps are explicitly out of scope,
// byte-for-byte whitespace preservation, and the "unchanged function body
// gets reformatted anyway" end-to-end scenario confirms the intent is a
// full, consistent re-print on every commit rather than tracking dirty
// subtrees).
func Print(n *Node) string {
	var sb strings.Builder
	printStatementOrProgram(&sb, n, 0)
	return sb.String()
}

// PrintExpr renders a single expression node with no statement wrapping
// (no trailing semicolon, no indentation) — used by the sandbox and by
// passes that need the textual form of a replacement node on its own.
func PrintExpr(n *Node) string {
	return printExpr(n, 0)
}

func indentOf(depth int) string {
	return strings.Repeat("  ", depth)
}

func printStatementOrProgram(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	if n.Kind == KindProgram {
		for _, s := range n.Body {
			printStatement(sb, s, depth)
		}
		return
	}
	printStatement(sb, n, depth)
}

func printBlock(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		sb.WriteString("{}")
		return
	}
	if n.Kind != KindBlockStatement {
		// arrow-function concise bodies etc. reuse this path with a
		// synthetic single-statement block.
		sb.WriteString("{\n")
		printStatement(sb, n, depth+1)
		sb.WriteString(indentOf(depth))
		sb.WriteString("}")
		return
	}
	if len(n.Body) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteString("{\n")
	for _, s := range n.Body {
		printStatement(sb, s, depth+1)
	}
	sb.WriteString(indentOf(depth))
	sb.WriteString("}")
}

func printStatement(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	ind := indentOf(depth)
	switch n.Kind {
	case KindEmptyStatement:
		return

	case KindExpressionStatement:
		sb.WriteString(ind)
		sb.WriteString(printExpr(n.Expression, 0))
		sb.WriteString(";\n")

	case KindVariableDeclaration:
		sb.WriteString(ind)
		sb.WriteString(n.DeclKind)
		sb.WriteString(" ")
		for i, d := range n.Declarations {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(printDeclarator(d))
		}
		sb.WriteString(";\n")

	case KindReturnStatement:
		sb.WriteString(ind)
		sb.WriteString("return")
		if n.Argument != nil {
			sb.WriteString(" ")
			sb.WriteString(printExpr(n.Argument, 0))
		}
		sb.WriteString(";\n")

	case KindThrowStatement:
		sb.WriteString(ind)
		sb.WriteString("throw ")
		sb.WriteString(printExpr(n.Argument, 0))
		sb.WriteString(";\n")

	case KindBreakStatement:
		sb.WriteString(ind)
		sb.WriteString("break")
		if n.Label != nil {
			sb.WriteString(" " + n.Label.Name)
		}
		sb.WriteString(";\n")

	case KindContinueStatement:
		sb.WriteString(ind)
		sb.WriteString("continue")
		if n.Label != nil {
			sb.WriteString(" " + n.Label.Name)
		}
		sb.WriteString(";\n")

	case KindBlockStatement:
		sb.WriteString(ind)
		printBlock(sb, n, depth)
		sb.WriteString("\n")

	case KindIfStatement:
		sb.WriteString(ind)
		sb.WriteString("if (")
		sb.WriteString(printExpr(n.Test, 0))
		sb.WriteString(") ")
		printBlock(sb, n.Consequent, depth)
		if n.Alternate != nil {
			sb.WriteString(" else ")
			if n.Alternate.Kind == KindIfStatement {
				sb.WriteString(strings.TrimLeft(inlineStatement(n.Alternate, depth), " "))
			} else {
				printBlock(sb, n.Alternate, depth)
			}
		}
		sb.WriteString("\n")

	case KindWhileStatement:
		sb.WriteString(ind)
		sb.WriteString("while (")
		sb.WriteString(printExpr(n.Test, 0))
		sb.WriteString(") ")
		printBlock(sb, n.LoopBody, depth)
		sb.WriteString("\n")

	case KindDoWhileStatement:
		sb.WriteString(ind)
		sb.WriteString("do ")
		printBlock(sb, n.LoopBody, depth)
		sb.WriteString(" while (")
		sb.WriteString(printExpr(n.Test, 0))
		sb.WriteString(");\n")

	case KindForStatement:
		sb.WriteString(ind)
		sb.WriteString("for (")
		sb.WriteString(printForHead(n.ForInit))
		sb.WriteString("; ")
		if n.ForTest != nil {
			sb.WriteString(printExpr(n.ForTest, 0))
		}
		sb.WriteString("; ")
		if n.ForUpdate != nil {
			sb.WriteString(printExpr(n.ForUpdate, 0))
		}
		sb.WriteString(") ")
		printBlock(sb, n.LoopBody, depth)
		sb.WriteString("\n")

	case KindForInStatement, KindForOfStatement:
		sb.WriteString(ind)
		sb.WriteString("for (")
		sb.WriteString(printForHead(n.ForLeft))
		if n.Kind == KindForInStatement {
			sb.WriteString(" in ")
		} else {
			sb.WriteString(" of ")
		}
		sb.WriteString(printExpr(n.ForRight, 0))
		sb.WriteString(") ")
		printBlock(sb, n.LoopBody, depth)
		sb.WriteString("\n")

	case KindSwitchStatement:
		sb.WriteString(ind)
		sb.WriteString("switch (")
		sb.WriteString(printExpr(n.Discriminant, 0))
		sb.WriteString(") {\n")
		for _, c := range n.Cases {
			sb.WriteString(indentOf(depth + 1))
			if c.Test != nil {
				sb.WriteString("case " + printExpr(c.Test, 0) + ":\n")
			} else {
				sb.WriteString("default:\n")
			}
			for _, s := range c.Body {
				printStatement(sb, s, depth+2)
			}
		}
		sb.WriteString(ind)
		sb.WriteString("}\n")

	case KindTryStatement:
		sb.WriteString(ind)
		sb.WriteString("try ")
		printBlock(sb, n.TryBlock, depth)
		if n.Handler != nil {
			sb.WriteString(" catch ")
			if n.Handler.CatchParm != nil {
				sb.WriteString("(" + printExpr(n.Handler.CatchParm, 0) + ") ")
			}
			printBlock(sb, n.Handler.FuncBody, depth)
		}
		if n.Finalizer != nil {
			sb.WriteString(" finally ")
			printBlock(sb, n.Finalizer, depth)
		}
		sb.WriteString("\n")

	case KindLabeledStatement:
		sb.WriteString(ind)
		sb.WriteString(n.Label.Name + ": ")
		sb.WriteString(strings.TrimLeft(inlineStatement(n.LabeledBody, depth), " "))
		sb.WriteString("\n")

	case KindFunctionDeclaration:
		sb.WriteString(ind)
		sb.WriteString(printFunctionHead(n))
		sb.WriteString(" ")
		printBlock(sb, n.FuncBody, depth)
		sb.WriteString("\n")

	default:
		// Opaque statement or an expression used directly as a
		// statement; fall back to verbatim/expr rendering.
		sb.WriteString(ind)
		if n.Kind == KindOpaque {
			sb.WriteString(n.Raw)
		} else {
			sb.WriteString(printExpr(n, 0))
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
}

// inlineStatement renders a statement without leading indentation, used
// for "else if" chains and labeled statements so they stay on one line
// with their keyword.
func inlineStatement(n *Node, depth int) string {
	var sb strings.Builder
	printStatement(&sb, n, depth)
	return sb.String()
}

func printForHead(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == KindVariableDeclaration {
		var sb strings.Builder
		sb.WriteString(n.DeclKind)
		sb.WriteString(" ")
		for i, d := range n.Declarations {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(printDeclarator(d))
		}
		return sb.String()
	}
	return printExpr(n, 0)
}

func printDeclarator(d *Node) string {
	if d == nil {
		return ""
	}
	out := printExpr(d.TargetID, 0)
	if d.Init != nil {
		out += " = " + printExpr(d.Init, precAssignment)
	}
	return out
}

func printFunctionHead(n *Node) string {
	var sb strings.Builder
	if n.Async {
		sb.WriteString("async ")
	}
	sb.WriteString("function")
	if n.Generator {
		sb.WriteString("*")
	}
	if n.FuncName != nil {
		sb.WriteString(" " + n.FuncName.Name)
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString("(")
	for i, p := range n.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(printExpr(p, 0))
	}
	sb.WriteString(")")
	return sb.String()
}

// --- expression precedence -----------------------------------------------

const (
	precSequence = iota
	precAssignment
	precConditional
	precNullish
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precCall
	precPrimary
)

func opPrecedence(op string) int {
	switch op {
	case "??":
		return precNullish
	case "||":
		return precLogicalOr
	case "&&":
		return precLogicalAnd
	case "|":
		return precBitOr
	case "^":
		return precBitXor
	case "&":
		return precBitAnd
	case "==", "!=", "===", "!==":
		return precEquality
	case "<", ">", "<=", ">=", "in", "instanceof":
		return precRelational
	case "<<", ">>", ">>>":
		return precShift
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	case "**":
		return precExponent
	}
	return precPrimary
}

func precedenceOf(n *Node) int {
	switch n.Kind {
	case KindSequenceExpression:
		return precSequence
	case KindAssignmentExpression:
		return precAssignment
	case KindConditionalExpression:
		return precConditional
	case KindLogicalExpression, KindBinaryExpression:
		return opPrecedence(n.Operator)
	case KindUnaryExpression, KindUpdateExpression:
		if n.Kind == KindUpdateExpression && !n.Prefix {
			return precPostfix
		}
		return precUnary
	case KindCallExpression, KindNewExpression, KindMemberExpression:
		return precCall
	default:
		return precPrimary
	}
}

func printExpr(n *Node, minPrec int) string {
	if n == nil {
		return ""
	}
	body := renderExprBody(n)
	if precedenceOf(n) < minPrec {
		return "(" + body + ")"
	}
	return body
}

func renderExprBody(n *Node) string {
	switch n.Kind {
	case KindLiteral:
		return printLiteral(n)
	case KindRegExpLiteral:
		return "/" + n.Pattern + "/" + n.Flags
	case KindBigIntLiteral:
		return n.Raw
	case KindIdentifier:
		return n.Name
	case KindThisExpression:
		return "this"
	case KindArrayExpression:
		parts := make([]string, len(n.Body))
		for i, el := range n.Body {
			parts[i] = printExpr(el, precAssignment)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObjectExpression:
		if len(n.Body) == 0 {
			return "{}"
		}
		parts := make([]string, len(n.Body))
		for i, p := range n.Body {
			parts[i] = printExpr(p, 0)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case KindProperty:
		if n.Shorthand {
			return printExpr(n.Key, 0)
		}
		return printExpr(n.Key, 0) + ": " + printExpr(n.Value, precAssignment)
	case KindSpreadElement:
		return "..." + printExpr(n.Argument, precAssignment)
	case KindUnaryExpression:
		space := ""
		if isWordOperator(n.Operator) {
			space = " "
		}
		return n.Operator + space + printExpr(n.Argument, precUnary)
	case KindUpdateExpression:
		if n.Prefix {
			return n.Operator + printExpr(n.Argument, precUnary)
		}
		return printExpr(n.Argument, precPostfix) + n.Operator
	case KindBinaryExpression, KindLogicalExpression:
		prec := opPrecedence(n.Operator)
		left := printExpr(n.Left, prec)
		right := printExpr(n.Right, prec+1)
		return left + " " + n.Operator + " " + right
	case KindAssignmentExpression:
		return printExpr(n.Left, precCall) + " " + n.Operator + " " + printExpr(n.Right, precAssignment)
	case KindSequenceExpression:
		parts := make([]string, len(n.Expressions))
		for i, e := range n.Expressions {
			parts[i] = printExpr(e, precAssignment)
		}
		return strings.Join(parts, ", ")
	case KindConditionalExpression:
		return printExpr(n.Test, precNullish) + " ? " + printExpr(n.Consequent, precAssignment) + " : " + printExpr(n.Alternate, precAssignment)
	case KindMemberExpression:
		if n.Computed {
			return printExpr(n.Object, precCall) + "[" + printExpr(n.Property, 0) + "]"
		}
		return printExpr(n.Object, precCall) + "." + n.Property.Name
	case KindCallExpression:
		return printExpr(n.Callee, precCall) + "(" + joinArgs(n.Arguments) + ")"
	case KindNewExpression:
		return "new " + printExpr(n.Callee, precCall) + "(" + joinArgs(n.Arguments) + ")"
	case KindFunctionExpression:
		body := printFunctionHead(n) + " "
		var blk strings.Builder
		printBlock(&blk, n.FuncBody, 0)
		return body + blk.String()
	case KindFunctionDeclaration:
		var blk strings.Builder
		printBlock(&blk, n.FuncBody, 0)
		return printFunctionHead(n) + " " + blk.String()
	case KindArrowFunctionExpression:
		return printArrow(n)
	case KindOpaque:
		return n.Raw
	}
	return n.Raw
}

func printArrow(n *Node) string {
	var params string
	if len(n.Params) == 1 && n.Params[0].Kind == KindIdentifier {
		params = n.Params[0].Name
	} else {
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = printExpr(p, 0)
		}
		params = "(" + strings.Join(parts, ", ") + ")"
	}
	prefix := ""
	if n.Async {
		prefix = "async "
	}
	if n.ExpressionBody {
		return prefix + params + " => " + printExpr(n.FuncBody, precAssignment)
	}
	var blk strings.Builder
	printBlock(&blk, n.FuncBody, 0)
	return prefix + params + " => " + blk.String()
}

func joinArgs(args []*Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printExpr(a, precAssignment)
	}
	return strings.Join(parts, ", ")
}

func isWordOperator(op string) bool {
	switch op {
	case "typeof", "void", "delete":
		return true
	}
	return false
}

func printLiteral(n *Node) string {
	switch n.LiteralType {
	case literalString:
		return quoteString(n.StrValue)
	case literalNumber:
		return formatJSNumber(n.NumValue)
	case literalBoolean:
		if n.BoolValue {
			return "true"
		}
		return "false"
	case literalNull:
		return "null"
	}
	return n.Raw
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString("\\'")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// formatJSNumber renders a float64 the way JS's Number#toString would for
// the integer-valued and simple decimal cases obfuscated code actually
// produces; it does not reproduce the full ECMAScript number-to-string
// algorithm (exotic exponential-notation edge cases are out of scope).
func formatJSNumber(v float64) string {
	if v == float64(int64(v)) && !(v == 0 && isNegativeZero(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isNegativeZero(v float64) bool {
	return v == 0 && strconv.FormatFloat(v, 'g', -1, 64) == "-0"
}
