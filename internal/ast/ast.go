package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position represents a line/column pair in source code (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetPos() Position
}

// Decl is implemented by every declaration node.
type Decl interface {
	Node
	declNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Variable is an assignment target or a variable reference inside an
// expression: either a plain name or an indexed array element.
type Variable interface {
	Node
	VarName() string
	variableNode()
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

// Program is the root of the tree: MainPrgm <Name>; Var <Decls> BeginPg { <Stmts> } EndPg;
type Program struct {
	Name  string
	Decls []Decl
	Stmts []Stmt
	Pos   Position
}

func (n *Program) GetPos() Position { return n.Pos }

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// VarDecl: let a, b, c: <type>;
type VarDecl struct {
	Names []string
	Type  *TypeExpr
	Pos   Position
}

func (n *VarDecl) GetPos() Position { return n.Pos }
func (n *VarDecl) declNode()        {}

// ConstDecl: @define Const <name>: <type> = <value>;
type ConstDecl struct {
	Name  string
	Type  *TypeExpr
	Value Expr
	Pos   Position
}

func (n *ConstDecl) GetPos() Position { return n.Pos }
func (n *ConstDecl) declNode()        {}

// TypeExpr is a type annotation: Int, Float, or an array type [Int; 5].
// It only ever appears in declarations.
type TypeExpr struct {
	Name    string // element name for arrays: "Int" or "Float"
	IsArray bool
	Size    int // array length, > 0 when IsArray
	Pos     Position
}

func (n *TypeExpr) GetPos() Position { return n.Pos }
func (n *TypeExpr) exprNode()        {}

func (n *TypeExpr) String() string {
	if n.IsArray {
		return fmt.Sprintf("[%s; %d]", n.Name, n.Size)
	}
	return n.Name
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// AssignStmt: <target> := <value>;
type AssignStmt struct {
	Target Variable
	Value  Expr
	Pos    Position
}

func (n *AssignStmt) GetPos() Position { return n.Pos }
func (n *AssignStmt) stmtNode()        {}

// IfStmt: if (<cond>) then { <then> } [else { <else> }]
type IfStmt struct {
	Cond *Condition
	Then []Stmt
	Else []Stmt // empty when there is no else branch
	Pos  Position
}

func (n *IfStmt) GetPos() Position { return n.Pos }
func (n *IfStmt) stmtNode()        {}

// DoWhileStmt: do { <body> } while (<cond>);
type DoWhileStmt struct {
	Body []Stmt
	Cond *Condition
	Pos  Position
}

func (n *DoWhileStmt) GetPos() Position { return n.Pos }
func (n *DoWhileStmt) stmtNode()        {}

// ForStmt: for <var> from <start> to <end> step <step> { <body> }
type ForStmt struct {
	Var    string
	VarPos Position
	Start  Expr
	End    Expr
	Step   Expr
	Body   []Stmt
	Pos    Position
}

func (n *ForStmt) GetPos() Position { return n.Pos }
func (n *ForStmt) stmtNode()        {}

// InputStmt: input(<target>);
type InputStmt struct {
	Target Variable
	Pos    Position
}

func (n *InputStmt) GetPos() Position { return n.Pos }
func (n *InputStmt) stmtNode()        {}

// OutputStmt: output(<expr>, …);
type OutputStmt struct {
	Exprs []Expr
	Pos   Position
}

func (n *OutputStmt) GetPos() Position { return n.Pos }
func (n *OutputStmt) stmtNode()        {}

// Condition wraps the boolean expression of an if or do-while.
type Condition struct {
	Expr Expr
}

func (c *Condition) GetPos() Position { return c.Expr.GetPos() }

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

// SimpleVar is a plain name reference.
type SimpleVar struct {
	Name string
	Pos  Position
}

func (n *SimpleVar) GetPos() Position { return n.Pos }
func (n *SimpleVar) VarName() string  { return n.Name }
func (n *SimpleVar) variableNode()    {}

// IndexVar: <name>[<index>]
type IndexVar struct {
	Name  string
	Index Expr
	Pos   Position
}

func (n *IndexVar) GetPos() Position { return n.Pos }
func (n *IndexVar) VarName() string  { return n.Name }
func (n *IndexVar) variableNode()    {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Or
)

var binaryOpSpelling = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Lt:  "<",
	Gt:  ">",
	Le:  "<=",
	Ge:  ">=",
	Eq:  "==",
	Ne:  "!=",
	And: "AND",
	Or:  "OR",
}

// String returns the operator as written in source.
func (op BinaryOp) String() string {
	if int(op) < len(binaryOpSpelling) {
		return binaryOpSpelling[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// Precedence returns the binding strength of op; higher binds tighter.
func (op BinaryOp) Precedence() int {
	switch op {
	case And, Or:
		return 1
	case Lt, Gt, Le, Ge, Eq, Ne:
		return 2
	case Add, Sub:
		return 3
	case Mul, Div:
		return 4
	}
	return 0
}

// IsRelational reports whether op compares two numbers.
func (op BinaryOp) IsRelational() bool {
	return op.Precedence() == 2
}

// IsLogical reports whether op is AND or OR.
func (op BinaryOp) IsLogical() bool {
	return op == And || op == Or
}

// BinaryExpr: <left> <op> <right>. Unary minus is represented as 0 - operand.
type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
	Pos   Position
}

func (n *BinaryExpr) GetPos() Position { return n.Pos }
func (n *BinaryExpr) exprNode()        {}

// NotExpr: !<operand>
type NotExpr struct {
	Operand Expr
	Pos     Position
}

func (n *NotExpr) GetPos() Position { return n.Pos }
func (n *NotExpr) exprNode()        {}

// VarExpr is a variable read.
type VarExpr struct {
	Var Variable
}

func (n *VarExpr) GetPos() Position { return n.Var.GetPos() }
func (n *VarExpr) exprNode()        {}

// IntLit is an integer literal, signed or not.
type IntLit struct {
	Value int32
	Pos   Position
}

func (n *IntLit) GetPos() Position { return n.Pos }
func (n *IntLit) exprNode()        {}

// FloatLit is a float literal, signed or not.
type FloatLit struct {
	Value float32
	Pos   Position
}

func (n *FloatLit) GetPos() Position { return n.Pos }
func (n *FloatLit) exprNode()        {}

// StringLit is a string literal; Value excludes the quotes.
type StringLit struct {
	Value string
	Pos   Position
}

func (n *StringLit) GetPos() Position { return n.Pos }
func (n *StringLit) exprNode()        {}

// ---------------------------------------------------------------------------
// Debug printer – produces a human-readable tree representation
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the AST.
func DebugString(prog *Program) string {
	var b strings.Builder
	debugProgram(&b, prog, 0)
	return b.String()
}

func writeIndent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func debugProgram(b *strings.Builder, prog *Program, level int) {
	writeIndent(b, level)
	fmt.Fprintf(b, "Program %s\n", prog.Name)

	for _, d := range prog.Decls {
		writeIndent(b, level+1)
		switch d := d.(type) {
		case *VarDecl:
			fmt.Fprintf(b, "VarDecl %s: %s\n", strings.Join(d.Names, ", "), d.Type)
		case *ConstDecl:
			fmt.Fprintf(b, "ConstDecl %s: %s = %s\n", d.Name, d.Type, ExprString(d.Value))
		}
	}
	debugBlock(b, "Body", prog.Stmts, level+1)
}

func debugBlock(b *strings.Builder, label string, stmts []Stmt, level int) {
	writeIndent(b, level)
	fmt.Fprintf(b, "%s [%d statements]\n", label, len(stmts))
	for _, s := range stmts {
		debugStmt(b, s, level+1)
	}
}

func debugStmt(b *strings.Builder, s Stmt, level int) {
	writeIndent(b, level)
	switch s := s.(type) {
	case *AssignStmt:
		fmt.Fprintf(b, "AssignStmt %s := %s\n", VariableString(s.Target), ExprString(s.Value))
	case *IfStmt:
		fmt.Fprintf(b, "IfStmt (%s)\n", ExprString(s.Cond.Expr))
		debugBlock(b, "Then", s.Then, level+1)
		if len(s.Else) > 0 {
			debugBlock(b, "Else", s.Else, level+1)
		}
	case *DoWhileStmt:
		fmt.Fprintf(b, "DoWhileStmt (%s)\n", ExprString(s.Cond.Expr))
		debugBlock(b, "Body", s.Body, level+1)
	case *ForStmt:
		fmt.Fprintf(b, "ForStmt %s from %s to %s step %s\n",
			s.Var, ExprString(s.Start), ExprString(s.End), ExprString(s.Step))
		debugBlock(b, "Body", s.Body, level+1)
	case *InputStmt:
		fmt.Fprintf(b, "InputStmt %s\n", VariableString(s.Target))
	case *OutputStmt:
		parts := make([]string, len(s.Exprs))
		for i, e := range s.Exprs {
			parts[i] = ExprString(e)
		}
		fmt.Fprintf(b, "OutputStmt %s\n", strings.Join(parts, ", "))
	default:
		b.WriteString("<unknown stmt>\n")
	}
}
