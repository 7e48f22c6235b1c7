package library

import (
	"fmt"
	"sync"
	"time"
)

const (
	logMsgBookAdded          = "book added"
	logMsgMemberRegistered   = "member registered"
	logMsgBookBorrowed       = "book borrowed"
	logMsgBorrowRejected     = "borrow rejected"
	logMsgDuplicateBookID    = "duplicate book id, later entry is unreachable by id"
	logMsgDuplicateMemberID  = "duplicate member id, later entry is unreachable by id"
	logMsgJournalWriteFailed = "failed to record checkout in journal"
	logAttrBookID            = "book_id"
	logAttrMemberID          = "member_id"
	logAttrTitle             = "title"
	logAttrName              = "name"
	logAttrError             = "error"
)

// Logger receives operational messages from a Library. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Journal records successful borrows. It is written before the in-memory
// state changes, so a failing journal leaves the Library untouched.
type Journal interface {
	RecordCheckout(c Checkout) error
}

// Library owns the catalog (books) and the roster (members), both kept in
// insertion order. Identifiers are not checked for uniqueness; every lookup
// returns the first match. All methods are safe for concurrent use.
type Library struct {
	mu      sync.Mutex
	books   []*Book
	members []*Member

	logger  Logger
	journal Journal
}

// Option configures a Library.
type Option func(*Library) error

// WithLogger sets the logger. Without one the Library is silent.
func WithLogger(logger Logger) Option {
	return func(l *Library) error {
		l.logger = logger
		return nil
	}
}

// WithJournal sets the journal that receives every successful borrow.
func WithJournal(journal Journal) Option {
	return func(l *Library) error {
		l.journal = journal
		return nil
	}
}

// New returns an empty Library.
func New(options ...Option) (*Library, error) {
	l := &Library{}
	for _, option := range options {
		if err := option(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ------------------ Catalog ------------------

// AddBook appends book to the catalog.
func (l *Library) AddBook(book *Book) error {
	if book == nil {
		return ErrNilBook
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.findBookByID(book.ID()); err == nil && l.logger != nil {
		l.logger.Warn(logMsgDuplicateBookID, logAttrBookID, book.ID())
	}
	l.books = append(l.books, book)

	if l.logger != nil {
		l.logger.Debug(logMsgBookAdded, logAttrBookID, book.ID(), logAttrTitle, book.Title())
	}
	return nil
}

// Books returns the catalog in insertion order.
func (l *Library) Books() []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Book, len(l.books))
	copy(out, l.books)
	return out
}

// ------------------ Roster ------------------

// RegisterMember appends member to the roster.
func (l *Library) RegisterMember(member *Member) error {
	if member == nil {
		return ErrNilMember
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.findMemberByID(member.ID()); err == nil && l.logger != nil {
		l.logger.Warn(logMsgDuplicateMemberID, logAttrMemberID, member.ID())
	}
	l.members = append(l.members, member)

	if l.logger != nil {
		l.logger.Debug(logMsgMemberRegistered, logAttrMemberID, member.ID(), logAttrName, member.Name())
	}
	return nil
}

// Members returns the roster in insertion order.
func (l *Library) Members() []*Member {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Member, len(l.members))
	copy(out, l.members)
	return out
}

// ------------------ Circulation ------------------

// BorrowBook lends the book to the member and returns the checkout it
// recorded. The member is looked up before the book, so ErrMemberNotFound
// wins when both ids are unknown. Every check runs before anything is mutated.
func (l *Library) BorrowBook(memberID, bookID string) (Checkout, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	member, err := l.findMemberByID(memberID)
	if err != nil {
		l.rejected(memberID, bookID, err)
		return Checkout{}, err
	}
	book, err := l.findBookByID(bookID)
	if err != nil {
		l.rejected(memberID, bookID, err)
		return Checkout{}, err
	}
	if !book.IsAvailable() {
		err := fmt.Errorf("book %q: %w", bookID, ErrBookUnavailable)
		l.rejected(memberID, bookID, err)
		return Checkout{}, err
	}

	c := Checkout{
		MemberID:   member.ID(),
		MemberName: member.Name(),
		BookID:     book.ID(),
		BookTitle:  book.Title(),
		BorrowedAt: time.Now().UTC(),
	}
	if l.journal != nil {
		if err := l.journal.RecordCheckout(c); err != nil {
			if l.logger != nil {
				l.logger.Error(logMsgJournalWriteFailed, logAttrMemberID, memberID, logAttrBookID, bookID, logAttrError, err.Error())
			}
			return Checkout{}, fmt.Errorf("record checkout: %w", err)
		}
	}

	book.markBorrowed()
	member.borrow(book)

	if l.logger != nil {
		l.logger.Info(logMsgBookBorrowed, logAttrMemberID, memberID, logAttrBookID, bookID)
	}
	return c, nil
}

func (l *Library) rejected(memberID, bookID string, err error) {
	if l.logger != nil {
		l.logger.Info(logMsgBorrowRejected, logAttrMemberID, memberID, logAttrBookID, bookID, logAttrError, err.Error())
	}
}

// findMemberByID and findBookByID expect l.mu to be held.

func (l *Library) findMemberByID(id string) (*Member, error) {
	for _, m := range l.members {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("member %q: %w", id, ErrMemberNotFound)
}

func (l *Library) findBookByID(id string) (*Book, error) {
	for _, b := range l.books {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("book %q: %w", id, ErrBookNotFound)
}
