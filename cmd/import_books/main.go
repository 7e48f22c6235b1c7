package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"library-desk/library"
)

const defaultCatalog = "catalog.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run imports every catalog in paths into one Library and prints a summary.
// It returns the process exit code so deferred cleanup runs before exit.
func run(paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		paths = []string{defaultCatalog}
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ledger, err := library.NewLedger()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening ledger: %v\n", err)
		return 1
	}
	defer ledger.Close()

	lib, err := library.New(library.WithLogger(logger), library.WithJournal(ledger))
	if err != nil {
		fmt.Fprintf(stderr, "Error creating library: %v\n", err)
		return 1
	}

	successCount := 0
	errorCount := 0

	for _, path := range paths {
		fmt.Fprintf(stdout, "Importing: %s... ", path)

		cat, err := library.LoadCatalogFile(path)
		if err != nil {
			fmt.Fprintf(stdout, "ERROR - %v\n", err)
			errorCount++
			continue
		}

		report, err := cat.Apply(lib)
		if err != nil {
			fmt.Fprintf(stdout, "ERROR - %v\n", err)
			errorCount++
			continue
		}

		fmt.Fprintf(stdout, "SUCCESS (%d books, %d members, %d borrows)\n", report.BooksAdded, report.MembersRegistered, report.Borrowed)
		for _, id := range report.DuplicateBookIDs {
			fmt.Fprintf(stdout, "  Warning: duplicate book id %q, only the first entry is reachable\n", id)
		}
		for _, id := range report.DuplicateMemberIDs {
			fmt.Fprintf(stdout, "  Warning: duplicate member id %q, only the first entry is reachable\n", id)
		}
		for _, f := range report.Failed {
			fmt.Fprintf(stdout, "  Borrow %s -> %s refused: %v\n", f.MemberID, f.BookID, f.Err)
		}
		successCount++
	}

	fmt.Fprintf(stdout, "\nImport complete!\n")
	fmt.Fprintf(stdout, "Successfully imported: %d catalog(s)\n", successCount)
	fmt.Fprintf(stdout, "Errors: %d\n", errorCount)

	if n, err := ledger.Count(); err == nil {
		fmt.Fprintf(stdout, "Borrows recorded: %d\n", n)
	}

	books := lib.Books()
	if len(books) > 0 {
		fmt.Fprintln(stdout, "\nCatalog:")
		fmt.Fprintf(stdout, "%-12s %-50s %-10s\n", "ID", "Title", "Available")
		fmt.Fprintln(stdout, strings.Repeat("-", 74))
		for _, b := range books {
			fmt.Fprintf(stdout, "%-12s %-50s %-10t\n", ansi.Truncate(b.ID(), 12, "..."), ansi.Truncate(b.Title(), 50, "..."), b.IsAvailable())
		}
	}

	members := lib.Members()
	if len(members) > 0 {
		fmt.Fprintln(stdout, "\nRoster:")
		fmt.Fprintf(stdout, "%-12s %-30s %s\n", "ID", "Name", "Borrowed")
		fmt.Fprintln(stdout, strings.Repeat("-", 74))
		for _, m := range members {
			fmt.Fprintf(stdout, "%-12s %-30s %s\n", ansi.Truncate(m.ID(), 12, "..."), ansi.Truncate(m.Name(), 30, "..."), strings.Join(m.View().Borrowed, ", "))
		}
	}

	if errorCount > 0 {
		return 1
	}
	return 0
}
