package ast

import (
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "    "

// Format renders prog as canonical source text. Parsing the result yields a
// tree equal to prog apart from positions.
func Format(prog *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MainPrgm %s;\n", prog.Name)
	b.WriteString("Var\n")
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *VarDecl:
			fmt.Fprintf(&b, "let %s: %s;\n", strings.Join(d.Names, ", "), d.Type)
		case *ConstDecl:
			fmt.Fprintf(&b, "@define Const %s: %s = %s;\n", d.Name, d.Type, ExprString(d.Value))
		}
	}
	b.WriteString("BeginPg\n")
	formatBlock(&b, prog.Stmts, 0)
	b.WriteString("\nEndPg;\n")
	return b.String()
}

func formatBlock(b *strings.Builder, stmts []Stmt, level int) {
	b.WriteString("{\n")
	for _, s := range stmts {
		formatStmt(b, s, level+1)
	}
	b.WriteString(strings.Repeat(indentUnit, level))
	b.WriteString("}")
}

func formatStmt(b *strings.Builder, s Stmt, level int) {
	b.WriteString(strings.Repeat(indentUnit, level))
	switch s := s.(type) {
	case *AssignStmt:
		fmt.Fprintf(b, "%s := %s;", VariableString(s.Target), ExprString(s.Value))
	case *IfStmt:
		fmt.Fprintf(b, "if (%s) then ", ExprString(s.Cond.Expr))
		formatBlock(b, s.Then, level)
		if len(s.Else) > 0 {
			b.WriteString(" else ")
			formatBlock(b, s.Else, level)
		}
	case *DoWhileStmt:
		b.WriteString("do ")
		formatBlock(b, s.Body, level)
		fmt.Fprintf(b, " while (%s);", ExprString(s.Cond.Expr))
	case *ForStmt:
		fmt.Fprintf(b, "for %s from %s to %s step %s ",
			s.Var, ExprString(s.Start), ExprString(s.End), ExprString(s.Step))
		formatBlock(b, s.Body, level)
	case *InputStmt:
		fmt.Fprintf(b, "input(%s);", VariableString(s.Target))
	case *OutputStmt:
		parts := make([]string, len(s.Exprs))
		for i, e := range s.Exprs {
			parts[i] = ExprString(e)
		}
		fmt.Fprintf(b, "output(%s);", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// VariableString returns the source form of a variable reference.
func VariableString(v Variable) string {
	switch v := v.(type) {
	case *SimpleVar:
		return v.Name
	case *IndexVar:
		return fmt.Sprintf("%s[%s]", v.Name, ExprString(v.Index))
	case nil:
		return "<nil>"
	}
	return "<unknown variable>"
}

// ExprString returns the source form of an expression, parenthesised only
// where operator precedence or left associativity requires it.
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e := e.(type) {
	case *BinaryExpr:
		prec := e.Op.Precedence()
		left := ExprString(e.Left)
		if l, ok := e.Left.(*BinaryExpr); ok && l.Op.Precedence() < prec {
			left = "(" + left + ")"
		}
		right := ExprString(e.Right)
		if r, ok := e.Right.(*BinaryExpr); ok && r.Op.Precedence() <= prec {
			right = "(" + right + ")"
		}
		return fmt.Sprintf("%s %s %s", left, e.Op, right)
	case *NotExpr:
		if _, ok := e.Operand.(*BinaryExpr); ok {
			return "!(" + ExprString(e.Operand) + ")"
		}
		return "!" + ExprString(e.Operand)
	case *VarExpr:
		return VariableString(e.Var)
	case *IntLit:
		if e.Value < 0 {
			return fmt.Sprintf("(%d)", e.Value)
		}
		return strconv.FormatInt(int64(e.Value), 10)
	case *FloatLit:
		return formatFloat(e.Value)
	case *StringLit:
		return `"` + e.Value + `"`
	case *TypeExpr:
		return e.String()
	}
	return "<unknown expr>"
}

// formatFloat always keeps a fractional part so the literal re-lexes as a
// float, and wraps negative values in the signed-literal form.
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if v < 0 || (v == 0 && strings.HasPrefix(s, "-")) {
		return "(" + s + ")"
	}
	return s
}
