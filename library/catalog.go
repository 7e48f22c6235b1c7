package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk seed format: books, members and borrows to replay,
// in file order.
//
//	books:
//	  - id: B1
//	    title: Dune
//	members:
//	  - id: M1
//	    name: Alice
//	borrows:
//	  - member: M1
//	    book: B1
type Catalog struct {
	Books   []CatalogBook   `yaml:"books"`
	Members []CatalogMember `yaml:"members"`
	Borrows []CatalogBorrow `yaml:"borrows"`
}

type CatalogBook struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

type CatalogMember struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type CatalogBorrow struct {
	MemberID string `yaml:"member"`
	BookID   string `yaml:"book"`
}

// BorrowFailure is a catalog borrow that the Library refused.
type BorrowFailure struct {
	MemberID string
	BookID   string
	Err      error
}

// ApplyReport summarises what Catalog.Apply did.
type ApplyReport struct {
	BooksAdded         int
	MembersRegistered  int
	Borrowed           int
	Failed             []BorrowFailure
	DuplicateBookIDs   []string
	DuplicateMemberIDs []string
}

// LoadCatalog decodes a YAML catalog. Unknown keys are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalogFile opens path and decodes it with LoadCatalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Apply adds the catalog's books and members to lib and then replays its
// borrows. Refused borrows are collected in the report rather than aborting
// the load; ids that already exist (in lib or earlier in the file) are
// reported as duplicates but still added.
func (c *Catalog) Apply(lib *Library) (ApplyReport, error) {
	var report ApplyReport

	bookIDs := make(map[string]bool)
	for _, b := range lib.Books() {
		bookIDs[b.ID()] = true
	}
	for _, cb := range c.Books {
		if bookIDs[cb.ID] {
			report.DuplicateBookIDs = append(report.DuplicateBookIDs, cb.ID)
		}
		bookIDs[cb.ID] = true
		if err := lib.AddBook(NewBook(cb.ID, cb.Title)); err != nil {
			return report, err
		}
		report.BooksAdded++
	}

	memberIDs := make(map[string]bool)
	for _, m := range lib.Members() {
		memberIDs[m.ID()] = true
	}
	for _, cm := range c.Members {
		if memberIDs[cm.ID] {
			report.DuplicateMemberIDs = append(report.DuplicateMemberIDs, cm.ID)
		}
		memberIDs[cm.ID] = true
		if err := lib.RegisterMember(NewMember(cm.ID, cm.Name)); err != nil {
			return report, err
		}
		report.MembersRegistered++
	}

	for _, br := range c.Borrows {
		if _, err := lib.BorrowBook(br.MemberID, br.BookID); err != nil {
			report.Failed = append(report.Failed, BorrowFailure{MemberID: br.MemberID, BookID: br.BookID, Err: err})
			continue
		}
		report.Borrowed++
	}

	return report, nil
}
