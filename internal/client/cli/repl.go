package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errExit = errors.New("exit")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Status(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args string) error
	Find(ctx context.Context, args string) error
	Get(ctx context.Context, args string) error
	Edit(ctx context.Context, args string) error
	Delete(ctx context.Context, args string) error
}

const (
	helpLoggedOut = "Available commands: login, status, list, find, get, edit, delete, exit\nQuote layout names that contain spaces: list \"Contact Details\""
	helpLoggedIn  = "Available commands: status, list, find, get, edit, delete, logout, exit\nQuote layout names that contain spaces: list \"Contact Details\""
)

// dispatch runs one command line. It returns errExit for exit and quit.
func dispatch(ctx context.Context, a execIface, line string) error {
	cmd, args := cutField(line)
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "help":
		if a.isLoggedIn(ctx) {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "login":
		return a.Login(ctx)
	case "status":
		return a.Status(ctx)
	case "logout":
		return a.Logout(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "find":
		return a.Find(ctx, args)
	case "get":
		return a.Get(ctx, args)
	case "edit":
		return a.Edit(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// runREPL reads command lines from lines until EOF, exit or quit, or until
// ctx is done. Errors from commands are printed and the loop goes on.
//
// Commands share lines with the prompts they show, so find and edit can
// read a JSON body from the following lines.
func runREPL(ctx context.Context, a execIface, statusFn func() string, lines *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("fmdata %s> ", statusFn()))

		line, err := lines.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		switch err := dispatch(ctx, a, line); {
		case errors.Is(err, errExit):
			printlnFn("Bye!")
			return
		case err != nil:
			printlnFn(FormatError(err))
		}
	}
}

// cutField splits off the first whitespace-separated field of s. The rest
// is returned trimmed but otherwise untouched, so JSON bodies keep their
// spacing.
// cutField splits off the first word of s. A word in double or single
// quotes may contain spaces, so layouts like "Contact Details" can be named.
func cutField(s string) (field, rest string) {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		if end := strings.IndexByte(s[1:], s[0]); end >= 0 {
			return s[1 : end+1], strings.TrimSpace(s[end+2:])
		}
	}
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
