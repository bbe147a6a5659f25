// Package ir defines the produced intermediate representation: typed data
// definitions, function bodies (opcode streams), identifiers, string/inline-
// asm pools, and the module container (spec §3, §6). OpCode generalizes the
// teacher's bytecode.OpCode (internal/bytecode/opcodes.go) flat byte enum to
// the closed, width-parameterized instruction set spec.md names.
package ir

// OpCode is the closed instruction-opcode enum of spec.md §3's
// IrInstruction. Width-parameterized families (INT{8,16,32,64}_*) are
// represented as a single base opcode carrying a Width operand field,
// mirroring how the teacher's vmregister iABC format separates opcode from
// operand shape instead of enumerating one opcode per width.
type OpCode byte

const (
	IntConst OpCode = iota
	UintConst
	Float32Const
	Float64Const
	LongDoubleConst
	ComplexFloat64From
	StringRef

	Int64Add

	Branch
	Jump
	// IndirectJump transfers control to a runtime-computed instruction index
	// left on the stack (a GNU `goto *ptr` through a label-address value).
	// Its target is resolved by the running program, never by Builder.Patch,
	// so it carries no Target operand and is deliberately excluded from
	// VerifyPatched's back-patch-completeness check.
	IndirectJump

	VStackPick
	VStackPop
	ScopePop

	Int64Load

	InlineAsmOp

	// Width-parameterized arithmetic family. Width and Signed live on the
	// Instruction, not on separate opcodes.
	IntAdd
	IntSub
	IntMul
	IntDiv
	IntMod
	IntAnd
	IntOr
	IntXor
	IntLshift
	IntRshift
	IntArshift
	IntNeg
	IntNot

	IntSignExtend
	IntZeroExtend
	IntToBool
	IntBoolAnd
	IntBoolOr
	IntBoolNot

	IntCmpEq
	IntCmpNe
	IntCmpLt
	IntCmpLe
	IntCmpGt
	IntCmpGe

	FloatAdd
	FloatSub
	FloatMul
	FloatDiv
	FloatNeg
	FloatCmpEq
	FloatCmpNe
	FloatCmpLt
	FloatCmpLe
	FloatCmpGt
	FloatCmpGe
	FloatToInt
	IntToFloat
	FloatConvert // change float width (float/double/long double)

	ComplexAdd
	ComplexSub
	ComplexMul
	ComplexDiv
	ComplexCmpEq
	ComplexCmpNe

	GetLocal
	SetLocal
	GetGlobal
	SetGlobal
	GetAddress // push the address of a local/global without loading

	Call
	Return

	Convert // generic typeconv marker (pointer<->integer, bool<->int, etc.)

	Nop
)

// Width is the operand bit-width an INT*/FLOAT* family instruction acts at.
type Width int

const (
	Width8 Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// LoadFlags qualifies an Int64Load (and the generic load family): whether
// the load is volatile, and whether it sign- or zero-extends from a
// narrower storage unit.
type LoadFlags struct {
	Volatile bool
	Signed   bool
	FromWidth Width
}

// Instruction is one `(opcode, operand)` pair (spec §3). Operand shape
// depends on Op; for Branch/Jump, Target holds a back-patchable instruction
// index (a sentinel of -1 until resolved).
type Instruction struct {
	Op        OpCode
	Width     Width
	Signed    bool
	IntOperand  int64
	UintOperand uint64
	FloatOperand float64
	StringOperand string
	Target      int // branch/jump target instruction index, -1 = unresolved placeholder
	LoadFlags   LoadFlags
	Symbol      string // GetGlobal/SetGlobal/Call target symbol
	LocalSlot   int    // GetLocal/SetLocal/GetAddress slot index
	ArgCount    int    // Call argument count
	InlineAsmID int
}

// PlaceholderTarget is the sentinel a reserved branch/jump carries until
// back-patched (spec invariant 8§3: "no instruction operand still holds a
// placeholder sentinel" at function-finalization time).
const PlaceholderTarget = -1

var opCodeNames = [...]string{
	IntConst: "IntConst", UintConst: "UintConst", Float32Const: "Float32Const",
	Float64Const: "Float64Const", LongDoubleConst: "LongDoubleConst",
	ComplexFloat64From: "ComplexFloat64From", StringRef: "StringRef",
	Int64Add: "Int64Add", Branch: "Branch", Jump: "Jump",
	IndirectJump: "IndirectJump",
	VStackPick: "VStackPick", VStackPop: "VStackPop", ScopePop: "ScopePop",
	Int64Load: "Int64Load", InlineAsmOp: "InlineAsmOp",
	IntAdd: "IntAdd", IntSub: "IntSub", IntMul: "IntMul", IntDiv: "IntDiv",
	IntMod: "IntMod", IntAnd: "IntAnd", IntOr: "IntOr", IntXor: "IntXor",
	IntLshift: "IntLshift", IntRshift: "IntRshift", IntArshift: "IntArshift",
	IntNeg: "IntNeg", IntNot: "IntNot",
	IntSignExtend: "IntSignExtend", IntZeroExtend: "IntZeroExtend",
	IntToBool: "IntToBool", IntBoolAnd: "IntBoolAnd", IntBoolOr: "IntBoolOr",
	IntBoolNot: "IntBoolNot",
	IntCmpEq: "IntCmpEq", IntCmpNe: "IntCmpNe", IntCmpLt: "IntCmpLt",
	IntCmpLe: "IntCmpLe", IntCmpGt: "IntCmpGt", IntCmpGe: "IntCmpGe",
	FloatAdd: "FloatAdd", FloatSub: "FloatSub", FloatMul: "FloatMul",
	FloatDiv: "FloatDiv", FloatNeg: "FloatNeg",
	FloatCmpEq: "FloatCmpEq", FloatCmpNe: "FloatCmpNe", FloatCmpLt: "FloatCmpLt",
	FloatCmpLe: "FloatCmpLe", FloatCmpGt: "FloatCmpGt", FloatCmpGe: "FloatCmpGe",
	FloatToInt: "FloatToInt", IntToFloat: "IntToFloat", FloatConvert: "FloatConvert",
	ComplexAdd: "ComplexAdd", ComplexSub: "ComplexSub", ComplexMul: "ComplexMul",
	ComplexDiv: "ComplexDiv", ComplexCmpEq: "ComplexCmpEq", ComplexCmpNe: "ComplexCmpNe",
	GetLocal: "GetLocal", SetLocal: "SetLocal", GetGlobal: "GetGlobal",
	SetGlobal: "SetGlobal", GetAddress: "GetAddress",
	Call: "Call", Return: "Return", Convert: "Convert", Nop: "Nop",
}

func (o OpCode) String() string {
	if int(o) < len(opCodeNames) && opCodeNames[o] != "" {
		return opCodeNames[o]
	}
	return "OpCode(?)"
}
