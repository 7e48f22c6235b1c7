package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-desk/library"
)

// runLibrarian executes the root command with script on stdin and returns
// stdout, stderr and the command error.
func runLibrarian(t *testing.T, script string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetIn(strings.NewReader(script))
	root.SetOut(&out)
	root.SetErr(&errOut)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	logger, err := newLogger(io.Discard, "debug")
	require.NoError(t, err)
	s, err := newSession(&out, logger, false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, &out
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "list books", want: []string{"list", "books"}},
		{line: "  add   book  Dune  ", want: []string{"add", "book", "Dune"}},
		{line: `add book "The Left Hand of Darkness" --id B2`, want: []string{"add", "book", "The Left Hand of Darkness", "--id", "B2"}},
		{line: `add member 'Ada "the Countess" Lovelace'`, want: []string{"add", "member", `Ada "the Countess" Lovelace`}},
		{line: `add book "say \"hi\""`, want: []string{"add", "book", `say "hi"`}},
		{line: `add book Dune\ Messiah`, want: []string{"add", "book", "Dune Messiah"}},
		{line: `add book 'Dune; Messiah'`, want: []string{"add", "book", "Dune; Messiah"}},
		{line: `add book "Tea & Sympathy"`, want: []string{"add", "book", "Tea & Sympathy"}},
		{line: `add book Echo\|Delta`, want: []string{"add", "book", "Echo|Delta"}},
		{line: `add book $HOME`, want: []string{"add", "book", "$HOME"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitLineEmpty(t *testing.T) {
	got, err := splitLine("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitLineUnterminated(t *testing.T) {
	for _, line := range []string{`add book "Dune`, `add book 'Dune`, `add book Dune\`} {
		_, err := splitLine(line)
		assert.ErrorIs(t, err, errBadQuoting, line)
	}
}

func TestSplitLineRefusesShellOperators(t *testing.T) {
	for _, line := range []string{
		"add book Dune; list books",
		"list books | head",
		"list books > out.txt",
		"add book Tea & Sympathy",
	} {
		_, err := splitLine(line)
		assert.ErrorIs(t, err, errShellOperator, line)
	}
}

func TestShellRejectsUnquotedOperatorWithoutSideEffects(t *testing.T) {
	s, out := newTestSession(t)

	err := s.runLine("add book Dune --id B1; add book Emma --id B2")
	require.ErrorIs(t, err, errShellOperator)
	assert.Empty(t, s.lib.Books(), "nothing before the operator may run")
	assert.Empty(t, out.String())
}

func TestShellBorrowScenario(t *testing.T) {
	script := `
# seed
add book Dune --id B1
add member Alice --id M1
borrow M1 B1
borrow M1 B1
show member M1 --json
list books --json
exit
list members
`
	out, _, err := runLibrarian(t, script)
	require.Error(t, err)
	assert.Equal(t, "1 command(s) failed", err.Error())

	assert.Contains(t, out, `Added book "Dune" with ID B1`)
	assert.Contains(t, out, "Registered member 'Alice' with ID M1")
	assert.Contains(t, out, "Book 'Dune' borrowed by Alice")
	assert.Contains(t, out, `book "B1": book is not available`)
	assert.Contains(t, out, `"borrowed": [`)
	assert.Contains(t, out, `"available": false`)
	assert.NotContains(t, out, "No members registered.", "lines after exit are not run")
}

func TestBorrowConfirmationNamesTheLentRecords(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.lib.AddBook(library.NewBook("B1", "Dune")))
	require.NoError(t, s.lib.AddBook(library.NewBook("B1", "Dune Messiah")))
	require.NoError(t, s.lib.RegisterMember(library.NewMember("M1", "Alice")))
	require.NoError(t, s.lib.RegisterMember(library.NewMember("M1", "Mallory")))

	require.NoError(t, s.runLine("borrow M1 B1"))
	assert.Contains(t, out.String(), "Book 'Dune' borrowed by Alice")

	out.Reset()
	require.Error(t, s.runLine("borrow M1 B1"))
	assert.NotContains(t, out.String(), "borrowed by")
}

func TestShellLookupErrors(t *testing.T) {
	script := strings.Join([]string{
		"add book Dune --id B1",
		"borrow M9 B9",
		"add member Alice --id M1",
		"borrow M1 B9",
		"show member M9",
	}, "\n")

	out, _, err := runLibrarian(t, script)
	require.Error(t, err)
	assert.Equal(t, "3 command(s) failed", err.Error())
	assert.Contains(t, out, `member "M9": member not found`)
	assert.Contains(t, out, `book "B9": book not found`)
}

func TestShellGeneratesIDs(t *testing.T) {
	s, out := newTestSession(t)

	require.NoError(t, s.runLine("add book Dune"))
	require.NoError(t, s.runLine("add member Alice Liddell"))

	books := s.lib.Books()
	require.Len(t, books, 1)
	assert.Len(t, books[0].ID(), 36)

	members := s.lib.Members()
	require.Len(t, members, 1)
	assert.Equal(t, "Alice Liddell", members[0].Name())
	assert.Contains(t, out.String(), members[0].ID())
}

func TestShellJSONFlagDoesNotLeak(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.runLine("add book Dune --id B1"))

	require.NoError(t, s.runLine("list books --json"))
	assert.Contains(t, out.String(), `"id": "B1"`)

	out.Reset()
	require.NoError(t, s.runLine("list books"))
	assert.NotContains(t, out.String(), `"id"`)
	assert.Contains(t, out.String(), "Dune")
}

func TestShellHistory(t *testing.T) {
	s, out := newTestSession(t)
	for _, line := range []string{
		"add book Dune --id B1",
		"add book Emma --id B2",
		"add member Alice --id M1",
		"add member Bob --id M2",
		"borrow M1 B1",
		"borrow M2 B2",
	} {
		require.NoError(t, s.runLine(line))
	}

	out.Reset()
	require.NoError(t, s.runLine("history --member M2 --json"))
	assert.Contains(t, out.String(), `"book_id": "B2"`)
	assert.NotContains(t, out.String(), `"book_id": "B1"`)

	out.Reset()
	require.NoError(t, s.runLine("history"))
	assert.Contains(t, out.String(), "Dune (B1)")
	assert.Contains(t, out.String(), "Emma (B2)")
}

func TestShellUnknownCommand(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.runLine("return M1 B1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestShellLoadAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `
books:
  - {id: B1, title: Dune}
  - {id: B1, title: Dune again}
members:
  - {id: M1, name: Alice}
borrows:
  - {member: M1, book: B1}
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	out, _, err := runLibrarian(t, "list members --json\n", "--seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 book(s), 1 member(s), 1 borrow(s)")
	assert.Contains(t, out, `duplicate book id "B1"`)
	assert.Contains(t, out, `"B1"`)

	s, sessOut := newTestSession(t)
	require.NoError(t, s.runLine("load "+path))
	assert.Contains(t, sessOut.String(), "Loaded 2 book(s)")
	assert.Error(t, s.runLine("load "+filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runLibrarian(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "librarian v"+version+"\n", out)
}
