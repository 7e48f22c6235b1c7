package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	errBadQuoting    = errors.New("unterminated quote or escape")
	errShellOperator = errors.New("unsupported shell operator")
)

// runShell reads commands line by line until EOF or exit. Interactive shells
// get a banner and a prompt and keep going after errors; piped scripts are
// silent apart from command output and report how many lines failed.
func runShell(s *session, in io.Reader, prompt string, interactive bool) error {
	scanner := bufio.NewScanner(in)

	if interactive {
		fmt.Fprintln(s.out, headerStyle.Render("Welcome to the Library Desk!"))
		fmt.Fprintln(s.out, "Available commands:")
		fmt.Fprintln(s.out, "  Catalog: add book, list books")
		fmt.Fprintln(s.out, "  Members: add member, list members, show member")
		fmt.Fprintln(s.out, "  Circulation: borrow, history")
		fmt.Fprintln(s.out, "  System: load, help, exit")
	}

	failed := 0
	for {
		if interactive {
			fmt.Fprint(s.out, "\n"+prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case line == "exit", line == "quit":
			if interactive {
				fmt.Fprintln(s.out, "Goodbye!")
			}
			return nil
		}

		if err := s.runLine(line); err != nil {
			fail(s.out, err.Error())
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if !interactive && failed > 0 {
		return fmt.Errorf("%d command(s) failed", failed)
	}
	return nil
}

// runLine executes a single shell line.
func (s *session) runLine(line string) error {
	args, err := splitLine(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	cmd := newShellCommands(s)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// splitLine breaks a line into words with POSIX quoting rules. Environment
// and backtick expansion stay off, and unquoted shell operators (; & | < >)
// are refused instead of silently ending the line.
func splitLine(line string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	args, err := parser.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadQuoting, err)
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("%w at column %d, quote it to use it literally", errShellOperator, parser.Position+1)
	}
	return args, nil
}
