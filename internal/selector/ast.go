package selector

import (
	"projgen/internal/analyze"
)

// Expr is a node of a selection expression tree. Trees are immutable once
// built; later stages produce new trees.
type Expr interface {
	Pos() Pos
	exprNode()
}

// LitKind classifies literals.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitNull
)

type (
	// Ident is a bare identifier.
	Ident struct {
		NamePos Pos
		Name    string
	}

	// Literal is a constant written in the selection.
	Literal struct {
		ValuePos Pos
		Kind     LitKind
		Value    string // source spelling, quotes included
	}

	// Member is X.Name, or X?.Name when Optional.
	Member struct {
		X        Expr
		Dot      Pos
		Name     string
		Optional bool
	}

	// Call is Fun(Args...).
	Call struct {
		Fun    Expr
		Lparen Pos
		Args   []Expr
	}

	// Index is X[Index].
	Index struct {
		X      Expr
		Lbrack Pos
		Index  Expr
	}

	// Unary is Op X.
	Unary struct {
		OpPos Pos
		Op    Kind
		X     Expr
	}

	// Binary is X Op Y.
	Binary struct {
		X     Expr
		OpPos Pos
		Op    Kind
		Y     Expr
	}

	// Cond is Cond ? Then : Else. Type is set once resolved.
	Cond struct {
		Cond     Expr
		Question Pos
		Then     Expr
		Else     Expr
		Type     *analyze.TypeInfo
	}

	// Lambda is Param => Body.
	Lambda struct {
		ParamPos Pos
		Param    string
		Body     Expr
	}

	// New constructs a record: new { ... } when Type is nil, otherwise
	// new T { ... }. Key names the structure the record belongs to within
	// its call site and is assigned when the field model is built.
	New struct {
		NewPos Pos
		Type   Expr // nil, *Ident or *Member naming the record type
		Inits  []*Init
		Key    string
	}

	// Init is one member initializer of a New: Name = Value, or a bare
	// Value whose name is implied.
	Init struct {
		NamePos Pos
		Name    string // empty when implicit
		Value   Expr
	}
)

func (x *Ident) Pos() Pos   { return x.NamePos }
func (x *Literal) Pos() Pos { return x.ValuePos }
func (x *Member) Pos() Pos  { return x.X.Pos() }
func (x *Call) Pos() Pos    { return x.Fun.Pos() }
func (x *Index) Pos() Pos   { return x.X.Pos() }
func (x *Unary) Pos() Pos   { return x.OpPos }
func (x *Binary) Pos() Pos  { return x.X.Pos() }
func (x *Cond) Pos() Pos    { return x.Cond.Pos() }
func (x *Lambda) Pos() Pos  { return x.ParamPos }
func (x *New) Pos() Pos     { return x.NewPos }

func (*Ident) exprNode()   {}
func (*Literal) exprNode() {}
func (*Member) exprNode()  {}
func (*Call) exprNode()    {}
func (*Index) exprNode()   {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}
func (*Cond) exprNode()    {}
func (*Lambda) exprNode()  {}
func (*New) exprNode()     {}

// Shape is the collection shape a query materializes into.
type Shape int

const (
	ShapeSeq    Shape = iota // lazy sequence, no terminal operator
	ShapeList                // ToList()
	ShapeArray               // ToArray()
	ShapeScalar              // Count() / Any()
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeSeq:
		return "seq"
	case ShapeList:
		return "list"
	case ShapeArray:
		return "array"
	case ShapeScalar:
		return "scalar"
	default:
		return "shape?"
	}
}

// OpKind identifies a query operator.
type OpKind int

const (
	OpWhere OpKind = iota
	OpSelect
	OpGroupBy
	OpCount
	OpAny
)

// String returns the operator's method name.
func (k OpKind) String() string {
	switch k {
	case OpWhere:
		return "Where"
	case OpSelect:
		return "Select"
	case OpGroupBy:
		return "GroupBy"
	case OpCount:
		return "Count"
	case OpAny:
		return "Any"
	default:
		return "Op?"
	}
}

// FallbackKind selects the value a guard produces when a check fails.
type FallbackKind int

const (
	FallbackNil        FallbackKind = iota // explicit no-value
	FallbackFalse                          // boolean false
	FallbackNullChar                       // '\x00'
	FallbackEmptyText                      // ""
	FallbackZero                           // zero value of Type
	FallbackEmptyCollection                // empty collection of Shape
)

// String returns the fallback name.
func (k FallbackKind) String() string {
	switch k {
	case FallbackNil:
		return "nil"
	case FallbackFalse:
		return "false"
	case FallbackNullChar:
		return "nullchar"
	case FallbackEmptyText:
		return "emptytext"
	case FallbackZero:
		return "zero"
	case FallbackEmptyCollection:
		return "empty"
	default:
		return "fallback?"
	}
}

type (
	// Query is a normalized chain of collection operators over Source.
	Query struct {
		Source Expr
		Over   *analyze.TypeInfo // type of Source
		Elem   *analyze.TypeInfo // element type of Source
		Ops    []*QueryOp
		Shape  Shape
		Type   *analyze.TypeInfo // result type of the whole query
	}

	// QueryOp is one operator of a Query. Body is nil for Count() and
	// Any() without predicate.
	QueryOp struct {
		OpPos     Pos
		Kind      OpKind
		Param     string
		ParamType *analyze.TypeInfo
		Body      Expr
		Result    *analyze.TypeInfo // element type after this operator
	}

	// Guard evaluates Value when every check is non-nil, else Fallback.
	Guard struct {
		Checks   []Expr
		Value    Expr
		Type     *analyze.TypeInfo // result type of the guard
		Fallback Fallback
	}

	// Fallback is the value of a failed Guard.
	Fallback struct {
		Kind  FallbackKind
		Type  *analyze.TypeInfo
		Shape Shape // for FallbackEmptyCollection
	}

	// Coalesce is X ?? Y over a nil-able X; Type is the result type. When
	// Deref is set X yields a pointer to Type and is dereferenced.
	Coalesce struct {
		X     Expr
		Y     Expr
		Type  *analyze.TypeInfo
		Deref bool
	}

	// Lift turns a value into a pointer to a copy of it.
	Lift struct {
		X    Expr
		Type *analyze.TypeInfo // the pointer type
	}

	// Unwrap dereferences a pointer, producing the zero value for nil.
	Unwrap struct {
		X    Expr
		Type *analyze.TypeInfo // the value type
	}

	// Qualified is a reference to a package-level declaration.
	Qualified struct {
		NamePos Pos
		PkgPath string
		Name    string
	}
)

func (x *Query) Pos() Pos     { return x.Source.Pos() }
func (x *Guard) Pos() Pos     { return x.Value.Pos() }
func (x *Coalesce) Pos() Pos  { return x.X.Pos() }
func (x *Lift) Pos() Pos      { return x.X.Pos() }
func (x *Unwrap) Pos() Pos    { return x.X.Pos() }
func (x *Qualified) Pos() Pos { return x.NamePos }

func (*Query) exprNode()     {}
func (*Guard) exprNode()     {}
func (*Coalesce) exprNode()  {}
func (*Lift) exprNode()      {}
func (*Unwrap) exprNode()    {}
func (*Qualified) exprNode() {}
