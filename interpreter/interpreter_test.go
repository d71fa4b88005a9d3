package interpreter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/hupe1980/livecad/core"
)

// counting returns an interpreter whose scripts can call tick() to count
// executed statements.
func counting(t *testing.T, optFns ...func(o *Options)) (*Interpreter, *int) {
	t.Helper()
	calls := new(int)
	tick := starlark.NewBuiltin("tick", func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
		*calls++
		return starlark.MakeInt(*calls), nil
	})
	fns := append([]func(o *Options){func(o *Options) {
		o.Predeclared = starlark.StringDict{"tick": tick}
	}}, optFns...)
	return New(fns...), calls
}

func load(in *Interpreter, text string) {
	in.Change(0, len(in.Text()), text)
}

func TestExecuteReportsUsedAndReused(t *testing.T) {
	in := New()
	load(in, "a = 1\nb = a + 1\n")

	used, reused, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("a", "b"), used)
	assert.Equal(t, core.NewNameSet("a"), reused)

	env := in.Environment()
	assert.Equal(t, starlark.MakeInt(1), env["a"])
	assert.Equal(t, starlark.MakeInt(2), env["b"])

	loc, ok := in.Locations().Get("b")
	require.True(t, ok)
	assert.Equal(t, core.Span{Start: 6, End: 15}, loc.Span)
	assert.NotNil(t, loc.Stmt)
	assert.Equal(t, []string{"a", "b"}, in.Locations().Names())
}

func TestExecuteStopsAtTarget(t *testing.T) {
	in := New()
	load(in, "a = 1\nb = 2\nc = 3\n")

	used, _, err := in.Execute(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("a"), used)
	assert.NotContains(t, in.Environment(), "b")

	used, _, err = in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("b", "c"), used)

	// moving the target back drops the later variables
	used, _, err = in.Execute(context.Background(), 11, true)
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Contains(t, in.Environment(), "b")
	assert.NotContains(t, in.Environment(), "c")
}

func TestExecuteOnlyRerunsEditedStatements(t *testing.T) {
	in, calls := counting(t)
	load(in, "a = tick()\nb = tick()\nc = tick()\n")

	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, 3, *calls)

	in.Change(22, 10, "c = tick() + 10")
	used, reused, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, core.NewNameSet("c"), used)
	assert.Empty(t, reused)
	assert.Equal(t, starlark.MakeInt(14), in.Environment()["c"])
	assert.Equal(t, starlark.MakeInt(1), in.Environment()["a"])

	// an edit of the first line runs everything again
	in.Change(0, 1, "x")
	used, _, err = in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, 7, *calls)
	assert.Equal(t, core.NewNameSet("x", "b", "c"), used)
	assert.NotContains(t, in.Environment(), "a")
}

func TestExecuteWithoutBackupsRestartsFromTheBeginning(t *testing.T) {
	in, calls := counting(t)
	load(in, "a = tick()\nb = tick()\nc = tick()\n")

	_, _, err := in.Execute(context.Background(), len(in.Text()), false)
	require.NoError(t, err)
	require.Equal(t, 3, *calls)

	in.Change(22, 10, "c = 0")
	_, _, err = in.Execute(context.Background(), len(in.Text()), false)
	require.NoError(t, err)
	assert.Equal(t, 5, *calls)
	assert.Equal(t, starlark.MakeInt(0), in.Environment()["c"])
}

func TestExecuteContinuesWhenAppending(t *testing.T) {
	in, calls := counting(t)
	load(in, "a = tick()\n")
	_, _, err := in.Execute(context.Background(), len(in.Text()), false)
	require.NoError(t, err)

	in.Change(len(in.Text()), 0, "b = a + tick()\n")
	used, reused, err := in.Execute(context.Background(), len(in.Text()), false)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, core.NewNameSet("b"), used)
	assert.Equal(t, core.NewNameSet("a"), reused)
}

func TestExpressionStatementsBecomeTemporaries(t *testing.T) {
	in := New()
	load(in, "a = 1\na + 1\n[a]; a * 3\n")

	used, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("a"), used)

	env := in.Environment()
	assert.Equal(t, starlark.MakeInt(2), env["_2"])
	assert.Contains(t, env, "_3")
	assert.Equal(t, starlark.MakeInt(3), env["_3_6"])

	loc, ok := in.Locations().Get("_2")
	require.True(t, ok)
	assert.True(t, loc.Temporary)
	assert.Equal(t, core.Span{Start: 6, End: 11}, loc.Span)
}

func TestExecuteFailureKeepsPreviousEnvironment(t *testing.T) {
	in := New()
	load(in, "a = 1\n")
	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)

	in.Change(len(in.Text()), 0, "b = 2\nc = 1 // 0\n")
	_, _, err = in.Execute(context.Background(), len(in.Text()), true)
	require.Error(t, err)

	ee, ok := core.AsEvaluationError(err)
	require.True(t, ok)
	require.NotNil(t, ee.Span)
	assert.Equal(t, "c = 1 // 0", in.Text()[ee.Span.Start:ee.Span.End])
	assert.NotContains(t, in.Environment(), "b")

	// fixing the statement reports the names of the failed run too
	in.Change(ee.Span.Start+4, 6, "3")
	used, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("b", "c"), used)
	assert.Equal(t, starlark.MakeInt(3), in.Environment()["c"])
}

func TestSyntaxErrorBelowTargetIsIgnored(t *testing.T) {
	in := New()
	load(in, "a = 1\nb = (\n")

	used, _, err := in.Execute(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("a"), used)

	_, _, err = in.Execute(context.Background(), len(in.Text()), true)
	ee, ok := core.AsEvaluationError(err)
	require.True(t, ok)
	require.NotNil(t, ee.Span)
}

func TestUndefinedNameFails(t *testing.T) {
	in := New()
	load(in, "a = missing + 1\n")
	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestExecuteHonoursCancellation(t *testing.T) {
	in := New()
	load(in, "n = 0\nwhile True:\n    n += 1\n")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := in.Execute(ctx, len(in.Text()), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteStepLimit(t *testing.T) {
	in := New(func(o *Options) { o.MaxExecutionSteps = 1000 })
	load(in, "n = 0\nwhile True:\n    n += 1\n")

	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestBuiltinsStayOutOfTheEnvironment(t *testing.T) {
	in, _ := counting(t)
	load(in, "a = tick()\n")
	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.NotContains(t, in.Environment(), "tick")

	in.Change(len(in.Text()), 0, "tick = 5\n")
	used, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.True(t, used.Has("tick"))
	assert.Equal(t, starlark.MakeInt(5), in.Environment()["tick"])
}

func TestControlFlowBindings(t *testing.T) {
	in := New()
	load(in, strings.Join([]string{
		"total = 0",
		"for i in range(4):",
		"    total += i",
		"def double(x):",
		"    return 2 * x",
		"if total > 2:",
		"    big = double(total)",
		"else:",
		"    small = total",
		"",
	}, "\n"))

	used, reused, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, core.NewNameSet("total", "i", "double", "big"), used)
	assert.True(t, reused.Has("total"))
	assert.Equal(t, starlark.MakeInt(12), in.Environment()["big"])
	_, ok := in.Locations().Get("small")
	assert.False(t, ok)
}

func TestPrintIsForwarded(t *testing.T) {
	var out []string
	in := New(func(o *Options) { o.Print = func(msg string) { out = append(out, msg) } })
	load(in, "print('hello')\n")

	_, _, err := in.Execute(context.Background(), len(in.Text()), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, out)
}
