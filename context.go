package contracts

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type frameKind int

const (
	frameArgument frameKind = iota
	frameThis
	frameResult
	frameExtraArguments
	frameAnd
	frameOr
	frameArrayItem
	frameTupleItem
	frameHashItem
	frameObjectField
	frameSilent
)

// frame describes one step of a traversal into a contract: an argument, a
// field, an element. The short forms are concatenated into the path of an error;
// the long form of the innermost frame explains where the failure happened.
type frame struct {
	short string
	long  string

	kind  frameKind
	index int
}

var (
	silentFrame = frame{kind: frameSilent}
	thisFrame   = frame{short: ".this", long: "for the `this` argument of the call.", kind: frameThis}
	resultFrame = frame{short: ".result", long: "for the return value of the call.", kind: frameResult}
	extrasFrame = frame{short: ".extraArguments", long: "for the extra argument array of the call", kind: frameExtraArguments}
	orFrame     = frame{short: ".or", kind: frameOr}
)

func argumentFrame(i int, name string) frame {
	if name != "" {
		return frame{short: "." + name, long: "for the `" + name + "` argument of the call.", kind: frameArgument, index: i}
	}
	return frame{short: ".arg(" + strconv.Itoa(i) + ")", long: "for the " + ith(i) + " argument of the call.", kind: frameArgument, index: i}
}

func andFrame(i int) frame {
	return frame{short: ".and(" + strconv.Itoa(i) + ")", long: "for the " + ith(i) + " branch of the `and` contract", kind: frameAnd, index: i}
}

func arrayItemFrame(i int) frame {
	return frame{short: "[" + strconv.Itoa(i) + "]", long: "for the " + ith(i) + " element of the array", kind: frameArrayItem, index: i}
}

func tupleItemFrame(i int) frame {
	return frame{short: "[" + strconv.Itoa(i) + "]", long: "for the " + ith(i) + " element of the tuple", kind: frameTupleItem, index: i}
}

func hashItemFrame(k string) frame {
	return frame{short: "." + k, long: "for the key `" + k + "` of the hash", kind: frameHashItem}
}

func objectFieldFrame(f string) frame {
	return frame{short: "." + f, long: "for the field `" + f + "` of the object", kind: frameObjectField}
}

// ith renders the zero-based index i as an English ordinal: 0 is "1st".
func ith(i int) string {
	n := i + 1
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// checkContext accompanies one top-level check or wrap. Wrapped callables fork
// it on every invocation so reentrant calls never share a stack.
type checkContext struct {
	thingName string
	data      any
	stack     []frame
	contract  *Contract
	wrapping  bool
	blameMe   bool
	wrappedAt *callSite
	wrapID    string
	// trial is non-zero while an or contract is probing its alternatives.
	trial int
}

func newContext(thingName string, data any, c *Contract, wrapping bool) *checkContext {
	return &checkContext{
		thingName: thingName,
		data:      data,
		contract:  c,
		wrapping:  wrapping,
		blameMe:   true,
	}
}

func (ctx *checkContext) fork() *checkContext {
	cp := *ctx
	cp.stack = slices.Clone(ctx.stack)
	return &cp
}

func (ctx *checkContext) push(f frame) {
	ctx.stack = append(ctx.stack, f)
}

func (ctx *checkContext) pop() {
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
}

// fail reports a violation. Violations raised while an or contract probes its
// alternatives are expected and not logged.
func (ctx *checkContext) fail(err *ContractError) error {
	if ctx.wrapping && ctx.trial == 0 && ctx.wrappedAt != nil {
		logEvent(ctx, "contract.violation")
	}
	return err.done()
}

// blame renders who broke the contract, or "" when nothing is named.
func (ctx *checkContext) blame() string {
	if ctx == nil || ctx.thingName == "" {
		return ""
	}
	name := ctx.thingName
	if ctx.contract != nil && ctx.contract.isFunctionLike() {
		name += "()"
	}
	switch {
	case !ctx.wrapping:
		return "check on `" + name + "` failed:"
	case ctx.blameMe:
		return "`" + name + "` broke its contract:"
	default:
		return "broke the contract on `" + name + "`:"
	}
}

// describeStack renders the innermost frame as a sentence and the rest of the
// stack as a path into the top-level contract.
func (ctx *checkContext) describeStack() string {
	var b strings.Builder
	stack := ctx.stack
	n := len(stack)
	if n == 0 {
		return ""
	}
	switch {
	case n >= 2 && stack[n-2].kind == frameExtraArguments:
		fmt.Fprintf(&b, "for the %s extra argument of the call.\n", ith(stack[n-1].index))
		stack = stack[:n-2]
	case stack[n-1].long != "":
		b.WriteString(stack[n-1].long + "\n")
		stack = stack[:n-1]
	}
	if len(stack) > 0 {
		b.WriteString("at position ")
		for _, f := range stack {
			b.WriteString(f.short)
		}
		b.WriteString("\nin contract:\n")
		b.WriteString(ctx.contract.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (ctx *checkContext) path() string {
	var b strings.Builder
	for _, f := range ctx.stack {
		b.WriteString(f.short)
	}
	return b.String()
}
