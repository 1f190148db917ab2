package contracts

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

var (
	// ErrViolation matches every *ContractError: the data did not satisfy a
	// contract.
	ErrViolation = errors.New("contract violation")
	// ErrMisuse matches every *LibraryError: a contract was built or used
	// incorrectly.
	ErrMisuse = errors.New("contract library misuse")
)

// ContractError reports a value that does not satisfy a contract.
type ContractError struct {
	msg       string
	expected  string
	actual    any
	thing     string
	path      string
	contract  string
	wrappedAt string
	wrapID    string
	pcs       []uintptr
	ctx       *checkContext
}

func (e *ContractError) Error() string { return e.msg }

func (e *ContractError) Is(target error) bool { return target == ErrViolation }

// Expected is the name of the contract that rejected the value, when a single
// contract did.
func (e *ContractError) Expected() string { return e.expected }

// Actual is the rejected value.
func (e *ContractError) Actual() any { return e.actual }

// Path concatenates the short forms of every traversal step leading to the
// failure, for instance ".arg(0)[2].name".
func (e *ContractError) Path() string { return e.path }

// Contract renders the top-level contract that was being checked.
func (e *ContractError) Contract() string { return e.contract }

// ThingName is the label of the checked value, if one was given.
func (e *ContractError) ThingName() string { return e.thing }

// WrappedAt is the file:line where the contract was installed by Wrap, or ""
// for plain checks.
func (e *ContractError) WrappedAt() string { return e.wrappedAt }

// WrapID identifies the wrap that reported the violation. It matches the
// wrap_id attribute of the library's log records.
func (e *ContractError) WrapID() string { return e.wrapID }

// Stack renders the call stack at the point of failure, without the frames of
// the contract engine itself.
func (e *ContractError) Stack() string {
	var b strings.Builder
	for _, f := range cleanFrames(e.pcs) {
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
	}
	return b.String()
}

// LibraryError reports misuse of the library: a malformed contract, or an
// operation the contract cannot support.
type LibraryError struct {
	ContractError
	// Func names the builder or operation that was misused.
	Func string
}

func (e *LibraryError) Is(target error) bool { return target == ErrMisuse }

// NewLibraryError reports misuse of fn outside of any check.
func NewLibraryError(fn, msg string) *LibraryError {
	return newLibraryError(fn, nil, msg)
}

func newContractError(ctx *checkContext, msg string) *ContractError {
	e := &ContractError{}
	e.begin(ctx, msg)
	return e
}

func newLibraryError(fn string, ctx *checkContext, msg string) *LibraryError {
	e := &LibraryError{Func: fn}
	if fn != "" {
		msg = fn + ": " + msg
	}
	e.begin(ctx, msg)
	return e
}

func (e *ContractError) begin(ctx *checkContext, msg string) {
	e.pcs = capturePCs()
	e.ctx = ctx
	blame := ctx.blame()
	e.msg += blame
	if blame != "" && msg != "" {
		e.msg += " "
	}
	e.msg += msg
	if blame != "" || msg != "" {
		e.msg += "\n"
	}
	if ctx == nil {
		return
	}
	e.thing = ctx.thingName
	e.path = ctx.path()
	e.wrapID = ctx.wrapID
	if ctx.contract != nil {
		e.contract = ctx.contract.String()
	}
	if ctx.wrappedAt != nil {
		e.wrappedAt = ctx.wrappedAt.String()
		e.msg += "(contract was wrapped at: " + e.wrappedAt + ")\n"
	}
}

func (e *ContractError) expect(expected string, data any) *ContractError {
	e.expected = expected
	e.actual = data
	e.msg += "Expected " + expected + ", but got " + inspect(data) + "\n"
	return e
}

func (e *ContractError) fullContract() *ContractError {
	if e.ctx != nil {
		e.msg += e.ctx.describeStack()
	}
	return e
}

func (e *ContractError) fullValue() *ContractError {
	ctx := e.ctx
	if ctx == nil || isFunction(ctx.data) {
		return e
	}
	if e.expected == "" || len(ctx.stack) > 0 {
		e.msg += "The full value being checked was:\n" + inspect(ctx.data) + "\n"
	}
	return e
}

func (e *ContractError) fullContractAndValue() *ContractError {
	return e.fullContract().fullValue()
}

// done detaches the error from the traversal state it was rendered from.
func (e *ContractError) done() *ContractError {
	e.ctx = nil
	return e
}

// callSite is the first caller outside the engine at the time a contract was
// installed.
type callSite struct {
	file string
	line int
}

func (s *callSite) String() string {
	if s == nil {
		return ""
	}
	return s.file + ":" + strconv.Itoa(s.line)
}

func captureCallSite() *callSite {
	frames := cleanFrames(capturePCs())
	if len(frames) == 0 {
		return &callSite{file: "unknown"}
	}
	return &callSite{file: frames[0].File, line: frames[0].Line}
}

func capturePCs() []uintptr {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	return pcs[:n]
}

var enginePackage = reflect.TypeOf(Contract{}).PkgPath()

// cleanFrames drops the engine's own frames (and the runtime and reflect
// frames interleaved with them) from the head of a stack.
func cleanFrames(pcs []uintptr) []runtime.Frame {
	var out []runtime.Frame
	frames := runtime.CallersFrames(pcs)
	head := true
	for {
		f, more := frames.Next()
		if head && isEngineFrame(f) {
			if !more {
				break
			}
			continue
		}
		head = false
		out = append(out, f)
		if !more {
			break
		}
	}
	return out
}

func isEngineFrame(f runtime.Frame) bool {
	if strings.HasPrefix(f.Function, "runtime.") || strings.HasPrefix(f.Function, "reflect.") {
		return true
	}
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	fn := f.Function
	if !strings.HasPrefix(fn, enginePackage) {
		return false
	}
	rest := fn[len(enginePackage):]
	return strings.HasPrefix(rest, ".")
}
