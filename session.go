package main

import (
	"fmt"
	"io"
	"log/slog"

	"library-desk/library"
)

// session is one shell's worth of state: a Library journaled into its own
// in-memory Ledger. Nothing outlives Close.
type session struct {
	lib    *library.Library
	ledger *library.Ledger
	logger *slog.Logger

	out         io.Writer
	json        bool // current line's --json
	jsonDefault bool
}

func newSession(out io.Writer, logger *slog.Logger, jsonOutput bool) (*session, error) {
	ledger, err := library.NewLedger()
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	lib, err := library.New(library.WithLogger(logger), library.WithJournal(ledger))
	if err != nil {
		ledger.Close()
		return nil, err
	}

	return &session{lib: lib, ledger: ledger, logger: logger, out: out, json: jsonOutput, jsonDefault: jsonOutput}, nil
}

// Close drops the ledger.
func (s *session) Close() error { return s.ledger.Close() }

// loadCatalog applies the catalog file at path to the session's Library.
func (s *session) loadCatalog(path string) (library.ApplyReport, error) {
	cat, err := library.LoadCatalogFile(path)
	if err != nil {
		return library.ApplyReport{}, err
	}
	report, err := cat.Apply(s.lib)
	if err != nil {
		return report, err
	}
	s.logger.Info("catalog loaded", "path", path,
		"books", report.BooksAdded, "members", report.MembersRegistered,
		"borrows", report.Borrowed, "refused", len(report.Failed))
	return report, nil
}

// findMember mirrors the Library's first-match lookup for display.
func (s *session) findMember(id string) (*library.Member, error) {
	for _, m := range s.lib.Members() {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("member %q: %w", id, library.ErrMemberNotFound)
}
