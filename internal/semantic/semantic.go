package semantic

import (
	"fmt"
	"strconv"

	"mainprgm/internal/ast"
)

// ---------------------------------------------------------------------------
// Diagnostic kinds
// ---------------------------------------------------------------------------

// DiagnosticKind classifies a semantic defect.
type DiagnosticKind int

const (
	UndefinedIdentifier DiagnosticKind = iota
	TypeMismatch
	IndexOutOfBounds
	DivisionByZero
	ConstantMutation
	ArrayUsedAsScalar
	InvalidIndexType
	DuplicateDeclaration
)

var kindNames = [...]string{
	UndefinedIdentifier:  "UndefinedIdentifier",
	TypeMismatch:         "TypeMismatch",
	IndexOutOfBounds:     "IndexOutOfBounds",
	DivisionByZero:       "DivisionByZero",
	ConstantMutation:     "ConstantMutation",
	ArrayUsedAsScalar:    "ArrayUsedAsScalar",
	InvalidIndexType:     "InvalidIndexType",
	DuplicateDeclaration: "DuplicateDeclaration",
}

func (k DiagnosticKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "DiagnosticKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText lets encoders emit the kind by name.
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ---------------------------------------------------------------------------
// Diagnostic
// ---------------------------------------------------------------------------

// Diagnostic represents a single defect reported by the semantic analyser.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Pos     ast.Position
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d, col %d: %s: %s", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}

// ---------------------------------------------------------------------------
// Type system
// ---------------------------------------------------------------------------

// Type represents a semantic type. Scalar types are singletons and compare
// by pointer; array types carry their element type and size.
type Type struct {
	Name string
	Elem *Type // arrays only
	Size int   // arrays only
}

var (
	TypeInt    = &Type{Name: "Int"}
	TypeFloat  = &Type{Name: "Float"}
	TypeBool   = &Type{Name: "Bool"}
	TypeString = &Type{Name: "String"}

	// TypeError is given to expressions whose type could not be determined.
	// Checks that depend on it are skipped so one defect is reported once.
	TypeError = &Type{Name: "<error>"}
)

// ArrayOf returns the array type [elem; size].
func ArrayOf(elem *Type, size int) *Type {
	return &Type{Name: fmt.Sprintf("[%s; %d]", elem.Name, size), Elem: elem, Size: size}
}

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.Elem != nil }

func (t *Type) String() string { return t.Name }

func isError(t *Type) bool   { return t == TypeError }
func isNumeric(t *Type) bool { return t == TypeInt || t == TypeFloat }

// isAssignableTo reports whether a value of type src can be stored in dst.
// Types must match exactly; Int and Float never convert implicitly.
func isAssignableTo(dst, src *Type) bool {
	return dst == src
}

// scalarType maps a declared scalar name to its singleton.
func scalarType(name string) *Type {
	if name == "Float" {
		return TypeFloat
	}
	return TypeInt
}

// resolveType converts a declaration's type annotation.
func resolveType(te *ast.TypeExpr) *Type {
	elem := scalarType(te.Name)
	if te.IsArray {
		return ArrayOf(elem, te.Size)
	}
	return elem
}

// ---------------------------------------------------------------------------
// Compile-time values
// ---------------------------------------------------------------------------

// Value is a folded compile-time numeric value.
type Value struct {
	IsFloat bool
	Int     int32
	Float   float32
}

func (v Value) String() string {
	if v.IsFloat {
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	}
	return strconv.FormatInt(int64(v.Int), 10)
}

func (v Value) asFloat() float32 {
	if v.IsFloat {
		return v.Float
	}
	return float32(v.Int)
}

func (v Value) isZero() bool {
	if v.IsFloat {
		return v.Float == 0
	}
	return v.Int == 0
}

// foldArith applies an arithmetic operator to two folded operands. It
// reports false for non-arithmetic operators and for division by zero.
func foldArith(op ast.BinaryOp, l, r Value) (Value, bool) {
	if !l.IsFloat && !r.IsFloat {
		switch op {
		case ast.Add:
			return Value{Int: l.Int + r.Int}, true
		case ast.Sub:
			return Value{Int: l.Int - r.Int}, true
		case ast.Mul:
			return Value{Int: l.Int * r.Int}, true
		case ast.Div:
			if r.Int == 0 {
				return Value{}, false
			}
			return Value{Int: l.Int / r.Int}, true
		}
		return Value{}, false
	}

	lf, rf := l.asFloat(), r.asFloat()
	switch op {
	case ast.Add:
		return Value{IsFloat: true, Float: lf + rf}, true
	case ast.Sub:
		return Value{IsFloat: true, Float: lf - rf}, true
	case ast.Mul:
		return Value{IsFloat: true, Float: lf * rf}, true
	case ast.Div:
		if rf == 0 {
			return Value{}, false
		}
		return Value{IsFloat: true, Float: lf / rf}, true
	}
	return Value{}, false
}

// ---------------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------------

// SymbolKind describes what a symbol represents.
type SymbolKind int

const (
	SymVariable SymbolKind = iota // let, or a for-loop variable
	SymConstant                   // @define Const
)

func (k SymbolKind) String() string {
	if k == SymConstant {
		return "Constant"
	}
	return "Variable"
}

// Symbol records the declaration of a name in a scope.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    *Type
	Mutable bool
	Depth   int // 0 for declarations, > 0 inside for bodies
	Pos     ast.Position
	Value   *Value // folded initialiser; constants only
}

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

// Scope is one frame of the symbol table with an optional parent.
type Scope struct {
	parent  *Scope
	depth   int
	symbols map[string]*Symbol
}

func newScope(parent *Scope) *Scope {
	s := &Scope{parent: parent, symbols: make(map[string]*Symbol)}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	return s
}

func (s *Scope) define(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

func (s *Scope) lookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// lookup traverses the scope chain (current → parent → …) to find a symbol.
func (s *Scope) lookup(name string) *Symbol {
	if sym := s.symbols[name]; sym != nil {
		return sym
	}
	if s.parent != nil {
		return s.parent.lookup(name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Analyser
// ---------------------------------------------------------------------------

// Analyzer holds the state for a single semantic-analysis pass. It is not
// reused: every call to Analyze builds a fresh one.
type Analyzer struct {
	diagnostics []Diagnostic
	scope       *Scope
	globals     []*Symbol // declaration order
}

// Analyze runs semantic analysis on prog and returns every diagnostic in
// the order the offending constructs are visited. The slice is empty when
// the program is accepted.
func Analyze(prog *ast.Program) []Diagnostic {
	diags, _ := AnalyzeWithSymbols(prog)
	return diags
}

// AnalyzeWithSymbols is Analyze that also returns the declared symbols in
// declaration order.
func AnalyzeWithSymbols(prog *ast.Program) ([]Diagnostic, []*Symbol) {
	a := &Analyzer{scope: newScope(nil)}
	a.analyzeDecls(prog.Decls)
	a.analyzeBlock(prog.Stmts)
	return a.diagnostics, a.globals
}

// ---- helpers ----

func (a *Analyzer) report(kind DiagnosticKind, pos ast.Position, format string, args ...interface{}) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

func (a *Analyzer) pushScope() {
	a.scope = newScope(a.scope)
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.parent
}

// declare adds sym to the global frame unless the name is taken.
func (a *Analyzer) declare(sym *Symbol) {
	if existing := a.scope.lookupLocal(sym.Name); existing != nil {
		a.report(DuplicateDeclaration, sym.Pos, "%q already declared at %s", sym.Name, existing.Pos)
		return
	}
	a.scope.define(sym)
	a.globals = append(a.globals, sym)
}

// ---------------------------------------------------------------------------
// Declaration pass
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeDecls(decls []ast.Decl) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			typ := resolveType(d.Type)
			for _, name := range d.Names {
				a.declare(&Symbol{
					Name:    name,
					Kind:    SymVariable,
					Type:    typ,
					Mutable: true,
					Pos:     d.Pos,
				})
			}
		case *ast.ConstDecl:
			a.analyzeConstDecl(d)
		}
	}
}

func (a *Analyzer) analyzeConstDecl(d *ast.ConstDecl) {
	declared := scalarType(d.Type.Name)
	sym := &Symbol{
		Name: d.Name,
		Kind: SymConstant,
		Type: declared,
		Pos:  d.Pos,
	}

	// The initialiser is checked before the constant itself is visible.
	before := len(a.diagnostics)
	valType := a.analyzeExpr(d.Value)
	if len(a.diagnostics) == before && !isError(valType) {
		val, ok := a.fold(d.Value)
		switch {
		case !isAssignableTo(declared, valType):
			a.report(TypeMismatch, d.Value.GetPos(),
				"cannot initialise %s constant %q with %s value", declared, d.Name, valType)
		case !ok:
			a.report(TypeMismatch, d.Value.GetPos(),
				"initialiser of constant %q is not a compile-time constant", d.Name)
		default:
			sym.Value = &val
		}
	}

	a.declare(sym)
}

// ---------------------------------------------------------------------------
// Statement analysis
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		a.analyzeStmt(s)
	}
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		a.analyzeAssignStmt(s)
	case *ast.IfStmt:
		a.checkCondition(s.Cond, "if")
		a.analyzeBlock(s.Then)
		a.analyzeBlock(s.Else)
	case *ast.DoWhileStmt:
		a.analyzeBlock(s.Body)
		a.checkCondition(s.Cond, "while")
	case *ast.ForStmt:
		a.analyzeForStmt(s)
	case *ast.InputStmt:
		a.analyzeVariable(s.Target, "read input into")
	case *ast.OutputStmt:
		for _, e := range s.Exprs {
			a.analyzeExpr(e)
		}
	}
}

// ---- Assign ----

func (a *Analyzer) analyzeAssignStmt(s *ast.AssignStmt) {
	targetType := a.analyzeVariable(s.Target, "assign to")
	valType := a.analyzeExpr(s.Value)

	if isError(targetType) || isError(valType) {
		return
	}
	if !isAssignableTo(targetType, valType) {
		a.report(TypeMismatch, s.Pos, "cannot assign %s to %s %q", valType, targetType, s.Target.VarName())
	}
}

// ---- Conditions ----

func (a *Analyzer) checkCondition(c *ast.Condition, keyword string) {
	t := a.analyzeExpr(c.Expr)
	if !isError(t) && t != TypeBool {
		a.report(TypeMismatch, c.GetPos(), "%s condition must be Bool, got %s", keyword, t)
	}
}

// ---- For ----

func (a *Analyzer) analyzeForStmt(s *ast.ForStmt) {
	bounds := []struct {
		label string
		expr  ast.Expr
	}{
		{"start", s.Start},
		{"end", s.End},
		{"step", s.Step},
	}
	for _, b := range bounds {
		t := a.analyzeExpr(b.expr)
		if !isError(t) && t != TypeInt {
			a.report(TypeMismatch, b.expr.GetPos(), "for %s must be Int, got %s", b.label, t)
		}
	}

	a.pushScope() // loop variable lives only in the body
	a.scope.define(&Symbol{
		Name:    s.Var,
		Kind:    SymVariable,
		Type:    TypeInt,
		Mutable: true,
		Depth:   a.scope.depth,
		Pos:     s.VarPos,
	})
	a.analyzeBlock(s.Body)
	a.popScope()
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

// analyzeVariable types a variable reference. When verb is non-empty the
// variable is a write target and must be mutable.
func (a *Analyzer) analyzeVariable(v ast.Variable, verb string) *Type {
	switch v := v.(type) {
	case *ast.SimpleVar:
		sym := a.scope.lookup(v.Name)
		if sym == nil {
			a.report(UndefinedIdentifier, v.Pos, "undefined identifier %q", v.Name)
			return TypeError
		}
		if verb != "" && !sym.Mutable {
			a.report(ConstantMutation, v.Pos, "cannot %s constant %q", verb, v.Name)
		}
		if sym.Type.IsArray() {
			a.report(ArrayUsedAsScalar, v.Pos, "array %q used without an index", v.Name)
			return TypeError
		}
		return sym.Type

	case *ast.IndexVar:
		return a.analyzeIndexVar(v)
	}
	return TypeError
}

func (a *Analyzer) analyzeIndexVar(v *ast.IndexVar) *Type {
	sym := a.scope.lookup(v.Name)
	if sym == nil {
		a.report(UndefinedIdentifier, v.Pos, "undefined identifier %q", v.Name)
		a.analyzeExpr(v.Index)
		return TypeError
	}
	if !sym.Type.IsArray() {
		a.report(TypeMismatch, v.Pos, "cannot index %s %q", sym.Type, v.Name)
		a.analyzeExpr(v.Index)
		return TypeError
	}

	idxType := a.analyzeExpr(v.Index)
	switch {
	case isError(idxType):
	case idxType != TypeInt:
		a.report(InvalidIndexType, v.Index.GetPos(), "index of %q must be Int, got %s", v.Name, idxType)
	default:
		if idx, ok := a.fold(v.Index); ok && (idx.Int < 0 || int(idx.Int) >= sym.Type.Size) {
			a.report(IndexOutOfBounds, v.Index.GetPos(),
				"index %d out of bounds for %q of size %d", idx.Int, v.Name, sym.Type.Size)
		}
	}
	// The element type stands even when the index is wrong.
	return sym.Type.Elem
}

// ---------------------------------------------------------------------------
// Expression analysis: returns the resolved type (TypeError = unknown)
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeExpr(expr ast.Expr) *Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return TypeInt
	case *ast.FloatLit:
		return TypeFloat
	case *ast.StringLit:
		return TypeString
	case *ast.VarExpr:
		return a.analyzeVariable(e.Var, "")
	case *ast.NotExpr:
		t := a.analyzeExpr(e.Operand)
		if !isError(t) && t != TypeBool {
			a.report(TypeMismatch, e.Pos, "operator '!' requires Bool operand, got %s", t)
		}
		return TypeBool
	case *ast.BinaryExpr:
		return a.analyzeBinaryExpr(e)
	}
	return TypeError
}

func (a *Analyzer) analyzeBinaryExpr(e *ast.BinaryExpr) *Type {
	leftType := a.analyzeExpr(e.Left)
	rightType := a.analyzeExpr(e.Right)

	if e.Op == ast.Div {
		if v, ok := a.fold(e.Right); ok && v.isZero() {
			a.report(DivisionByZero, e.Right.GetPos(), "division by zero")
		}
	}

	if isError(leftType) || isError(rightType) {
		if e.Op.IsLogical() || e.Op.IsRelational() {
			return TypeBool
		}
		return TypeError
	}

	switch {
	case e.Op.IsLogical():
		if leftType != TypeBool || rightType != TypeBool {
			a.report(TypeMismatch, e.Pos, "operator %s requires Bool operands, got %s and %s", e.Op, leftType, rightType)
		}
		return TypeBool

	case e.Op.IsRelational():
		if !isNumeric(leftType) || !isNumeric(rightType) {
			a.report(TypeMismatch, e.Pos, "operator %s requires numeric operands, got %s and %s", e.Op, leftType, rightType)
		}
		return TypeBool

	default:
		if !isNumeric(leftType) || !isNumeric(rightType) {
			a.report(TypeMismatch, e.Pos, "operator %s requires numeric operands, got %s and %s", e.Op, leftType, rightType)
			return TypeError
		}
		if leftType == TypeInt && rightType == TypeInt {
			return TypeInt
		}
		return TypeFloat
	}
}

// ---------------------------------------------------------------------------
// Constant folding
// ---------------------------------------------------------------------------

// fold evaluates e when it is built only from literals, constants and
// arithmetic. It never reports diagnostics.
func (a *Analyzer) fold(e ast.Expr) (Value, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Value{Int: e.Value}, true
	case *ast.FloatLit:
		return Value{IsFloat: true, Float: e.Value}, true
	case *ast.VarExpr:
		v, ok := e.Var.(*ast.SimpleVar)
		if !ok {
			return Value{}, false
		}
		sym := a.scope.lookup(v.Name)
		if sym == nil || sym.Value == nil {
			return Value{}, false
		}
		return *sym.Value, true
	case *ast.BinaryExpr:
		l, ok := a.fold(e.Left)
		if !ok {
			return Value{}, false
		}
		r, ok := a.fold(e.Right)
		if !ok {
			return Value{}, false
		}
		return foldArith(e.Op, l, r)
	}
	return Value{}, false
}
