package library

import "sync"

// Book is a catalog entry. A book starts out available and only a successful
// borrow makes it unavailable; nothing makes it available again.
//
// Books handed out by Library.Books may be read while another goroutine
// borrows them, so availability is guarded by the book's own lock.
type Book struct {
	id    string
	title string

	mu        sync.Mutex
	available bool
}

// NewBook returns an available book.
func NewBook(id, title string) *Book {
	return &Book{id: id, title: title, available: true}
}

func (b *Book) ID() string    { return b.id }
func (b *Book) Title() string { return b.title }

// IsAvailable reports whether the book may be borrowed.
func (b *Book) IsAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available
}

func (b *Book) markBorrowed() {
	b.mu.Lock()
	b.available = false
	b.mu.Unlock()
}

// Member is a registered library member together with the books they hold.
type Member struct {
	id   string
	name string

	mu       sync.Mutex
	borrowed []*Book
}

// NewMember returns a member with an empty borrowed list.
func NewMember(id, name string) *Member {
	return &Member{id: id, name: name}
}

func (m *Member) ID() string   { return m.id }
func (m *Member) Name() string { return m.name }

// BorrowedBooks returns the member's borrowed books in borrow order.
func (m *Member) BorrowedBooks() []*Book {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Book, len(m.borrowed))
	copy(out, m.borrowed)
	return out
}

func (m *Member) borrow(b *Book) {
	m.mu.Lock()
	m.borrowed = append(m.borrowed, b)
	m.mu.Unlock()
}

// BookView is the serialisable form of a Book used by listings.
type BookView struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Available bool   `json:"available" yaml:"available"`
}

// MemberView is the serialisable form of a Member used by listings.
type MemberView struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Borrowed []string `json:"borrowed" yaml:"borrowed"` // Book IDs in borrow order
}

// View snapshots the book.
func (b *Book) View() BookView {
	return BookView{ID: b.id, Title: b.title, Available: b.IsAvailable()}
}

// View snapshots the member.
func (m *Member) View() MemberView {
	borrowed := m.BorrowedBooks()
	ids := make([]string, 0, len(borrowed))
	for _, b := range borrowed {
		ids = append(ids, b.id)
	}
	return MemberView{ID: m.id, Name: m.name, Borrowed: ids}
}
