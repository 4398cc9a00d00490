package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(name, args string) error {
	if args != "" {
		name += " " + args
	}
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", "")
}
func (f *fakeExec) Status(context.Context) error { return f.record("status", "") }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", "")
}
func (f *fakeExec) List(_ context.Context, args string) error   { return f.record("list", args) }
func (f *fakeExec) Find(_ context.Context, args string) error   { return f.record("find", args) }
func (f *fakeExec) Get(_ context.Context, args string) error    { return f.record("get", args) }
func (f *fakeExec) Edit(_ context.Context, args string) error   { return f.record("edit", args) }
func (f *fakeExec) Delete(_ context.Context, args string) error { return f.record("delete", args) }

// capturePrints swaps printlnFn for the duration of the test.
func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	printed := capturePrints(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"status",
		"l People",
		"list People 10",
		`find People {"query": [{"firstName": "Brian"}]}`,
		"  GET   People   7  ",
		"edit People 7 mod=3 {}",
		"delete People 7",
		"logout",
		"exit",
		"status",
	}, "\n")))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, input)

	assert.Equal(t, []string{
		"login",
		"status",
		"list People",
		"list People 10",
		`find People {"query": [{"firstName": "Brian"}]}`,
		"get People   7",
		"edit People 7 mod=3 {}",
		"delete People 7",
		"logout",
	}, exec.calls, "nothing after exit runs")

	assert.Contains(t, *printed, helpLoggedOut)
	assert.Contains(t, *printed, helpLoggedIn)
	assert.Equal(t, "Bye!", (*printed)[len(*printed)-1])
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	printed := capturePrints(t)

	exec := &fakeExec{err: usageError("get <layout> <id>")}
	input := bufio.NewReader(strings.NewReader("get\nfoobar\nstatus"))
	runREPL(context.Background(), exec, func() string { return "(active)" }, input)

	assert.Equal(t, []string{"get", "status"}, exec.calls, "a final line without newline still runs")
	assert.Contains(t, *printed, "Usage: get <layout> <id>")
	assert.Contains(t, *printed, "Error: unknown command: foobar")
	assert.Contains(t, *printed, "fmdata (active)> ")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))
	assert.Empty(t, exec.calls)
}

func TestDispatch(t *testing.T) {
	capturePrints(t)
	exec := &fakeExec{}

	require.NoError(t, dispatch(context.Background(), exec, "   "))
	assert.ErrorIs(t, dispatch(context.Background(), exec, "quit"), errExit)
	assert.ErrorIs(t, dispatch(context.Background(), exec, "EXIT"), errExit)

	err := dispatch(context.Background(), exec, "register me")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errExit))
	assert.Empty(t, exec.calls)
}

func TestCutField(t *testing.T) {
	tests := []struct {
		in, field, rest string
	}{
		{"", "", ""},
		{"list", "list", ""},
		{"  list   People 10 ", "list", "People 10"},
		{"find\tPeople {\"a\": 1}", "find", "People {\"a\": 1}"},
		{`"Contact Details" 7`, "Contact Details", "7"},
		{`'Contact Details'   7 extra`, "Contact Details", "7 extra"},
		{`""`, "", ""},
		{`"unterminated layout 7`, `"unterminated`, "layout 7"},
		{`{"a": 1}`, `{"a":`, "1}"},
	}
	for _, tt := range tests {
		field, rest := cutField(tt.in)
		assert.Equal(t, tt.field, field, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}
