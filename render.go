package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	jsoniter "github.com/json-iterator/go"

	"library-desk/library"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func ok(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✔ "+fmt.Sprintf(format, args...)))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

func writeJSON(w io.Writer, v any) error {
	enc := jsonAPI.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ------------------ Tables ------------------

func renderBooks(w io.Writer, books []*library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No books in library."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-38s %-40s %-10s", "ID", "Title", "Available")))
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, b := range books {
		avail := successStyle.Render(fmt.Sprintf("%-10s", "Yes"))
		if !b.IsAvailable() {
			avail = pendingStyle.Render(fmt.Sprintf("%-10s", "No"))
		}
		fmt.Fprintf(w, "%-38s %-40s %s\n", ansi.Truncate(b.ID(), 38, "..."), ansi.Truncate(b.Title(), 40, "..."), avail)
	}
}

func renderMembers(w io.Writer, members []*library.Member) {
	if len(members) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No members registered."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-38s %-30s %-8s", "ID", "Name", "Borrowed")))
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, m := range members {
		fmt.Fprintf(w, "%-38s %-30s %-8d\n", ansi.Truncate(m.ID(), 38, "..."), ansi.Truncate(m.Name(), 30, "..."), len(m.BorrowedBooks()))
	}
}

func renderMember(w io.Writer, m *library.Member) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (ID: %s)", m.Name(), m.ID())))
	borrowed := m.BorrowedBooks()
	if len(borrowed) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No borrowed books."))
		return
	}
	for i, b := range borrowed {
		fmt.Fprintf(w, "%3d. %s (ID: %s)\n", i+1, b.Title(), b.ID())
	}
}

func renderCheckouts(w io.Writer, checkouts []library.Checkout) {
	if len(checkouts) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No borrows recorded."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-5s %-20s %-25s %-30s", "#", "Borrowed At", "Member", "Book")))
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, c := range checkouts {
		fmt.Fprintf(w, "%-5d %-20s %-25s %-30s\n",
			c.Seq,
			c.BorrowedAt.Format("2006-01-02 15:04:05"),
			ansi.Truncate(fmt.Sprintf("%s (%s)", c.MemberName, c.MemberID), 25, "..."),
			ansi.Truncate(fmt.Sprintf("%s (%s)", c.BookTitle, c.BookID), 30, "..."))
	}
}

func renderReport(w io.Writer, r library.ApplyReport) {
	ok(w, "Loaded %d book(s), %d member(s), %d borrow(s)", r.BooksAdded, r.MembersRegistered, r.Borrowed)
	for _, id := range r.DuplicateBookIDs {
		fmt.Fprintln(w, pendingStyle.Render(fmt.Sprintf("! duplicate book id %q: only the first entry is reachable", id)))
	}
	for _, id := range r.DuplicateMemberIDs {
		fmt.Fprintln(w, pendingStyle.Render(fmt.Sprintf("! duplicate member id %q: only the first entry is reachable", id)))
	}
	for _, f := range r.Failed {
		fail(w, fmt.Sprintf("borrow %s -> %s: %v", f.MemberID, f.BookID, f.Err))
	}
}
