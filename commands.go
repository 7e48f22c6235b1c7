package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"library-desk/library"
)

// newShellCommands builds the command tree for a single shell line. A fresh
// tree per line keeps flag values from leaking between lines.
func newShellCommands(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Library desk commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(s.out)
	root.SetErr(s.out)
	s.json = s.jsonDefault
	root.PersistentFlags().BoolVar(&s.json, "json", s.jsonDefault, "output as JSON")

	root.AddCommand(newAddCmd(s))
	root.AddCommand(newBorrowCmd(s))
	root.AddCommand(newListCmd(s))
	root.AddCommand(newShowCmd(s))
	root.AddCommand(newHistoryCmd(s))
	root.AddCommand(newLoadCmd(s))
	return root
}

// ------------------ Catalog & roster ------------------

func newAddCmd(s *session) *cobra.Command {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book or register a member",
	}

	var bookID string
	book := &cobra.Command{
		Use:   "book <title>",
		Short: "Add a book to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bookID == "" {
				bookID = uuid.NewString()
			}
			title := strings.Join(args, " ")
			if err := s.lib.AddBook(library.NewBook(bookID, title)); err != nil {
				return err
			}
			ok(s.out, "Added book %q with ID %s", title, bookID)
			return nil
		},
	}
	book.Flags().StringVar(&bookID, "id", "", "book ID (default: generated)")

	var memberID string
	member := &cobra.Command{
		Use:   "member <name>",
		Short: "Register a member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if memberID == "" {
				memberID = uuid.NewString()
			}
			name := strings.Join(args, " ")
			if err := s.lib.RegisterMember(library.NewMember(memberID, name)); err != nil {
				return err
			}
			ok(s.out, "Registered member '%s' with ID %s", name, memberID)
			return nil
		},
	}
	member.Flags().StringVar(&memberID, "id", "", "member ID (default: generated)")

	add.AddCommand(book, member)
	return add
}

func newListCmd(s *session) *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "List books or members",
	}
	list.AddCommand(&cobra.Command{
		Use:   "books",
		Short: "List the catalog in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := s.lib.Books()
			if s.json {
				views := make([]library.BookView, 0, len(books))
				for _, b := range books {
					views = append(views, b.View())
				}
				return writeJSON(s.out, views)
			}
			renderBooks(s.out, books)
			return nil
		},
	})
	list.AddCommand(&cobra.Command{
		Use:   "members",
		Short: "List the roster in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members := s.lib.Members()
			if s.json {
				views := make([]library.MemberView, 0, len(members))
				for _, m := range members {
					views = append(views, m.View())
				}
				return writeJSON(s.out, views)
			}
			renderMembers(s.out, members)
			return nil
		},
	})
	return list
}

func newShowCmd(s *session) *cobra.Command {
	show := &cobra.Command{
		Use:   "show",
		Short: "Show a single record",
	}
	show.AddCommand(&cobra.Command{
		Use:   "member <id>",
		Short: "Show a member and the books they hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := s.findMember(args[0])
			if err != nil {
				return err
			}
			if s.json {
				return writeJSON(s.out, m.View())
			}
			renderMember(s.out, m)
			return nil
		},
	})
	return show
}

// ------------------ Circulation ------------------

func newBorrowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <member-id> <book-id>",
		Short: "Lend a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, bookID := args[0], args[1]
			c, err := s.lib.BorrowBook(memberID, bookID)
			if err != nil {
				return err
			}
			ok(s.out, "Book '%s' borrowed by %s", c.BookTitle, c.MemberName)
			return nil
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	var filter library.CheckoutFilter
	history := &cobra.Command{
		Use:   "history",
		Short: "Show recorded borrows, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkouts, err := s.ledger.Checkouts(filter)
			if err != nil {
				return err
			}
			if s.json {
				return writeJSON(s.out, checkouts)
			}
			renderCheckouts(s.out, checkouts)
			return nil
		},
	}
	history.Flags().StringVar(&filter.MemberID, "member", "", "only borrows by this member ID")
	history.Flags().StringVar(&filter.BookID, "book", "", "only borrows of this book ID")
	return history
}

func newLoadCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "load <catalog.yaml>",
		Short: "Load books, members and borrows from a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := s.loadCatalog(args[0])
			if err != nil {
				return err
			}
			renderReport(s.out, report)
			return nil
		},
	}
}
