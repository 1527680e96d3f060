package accounts

import (
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/coa/internal/model"
)

// DefaultFirstOrder is suggested for the first child of a parent.
const DefaultFirstOrder = 1000

// OrderStep separates consecutive sibling orders.
const OrderStep = 100

// Service provides in-memory lookup and editing over a flat chart of
// accounts. Codes are assumed unique; when they are not, Get returns the
// first row.
type Service struct {
	accounts    []model.Account
	byCode      map[string]int
	rootMarkers []string
}

// NewService creates a Service from a slice of accounts. The slice is copied.
func NewService(accounts []model.Account) *Service {
	s := &Service{
		accounts:    slices.Clone(accounts),
		rootMarkers: model.RootMarkers,
	}
	s.reindex()
	return s
}

// SetRootMarkers sets the parent codes that edits accept without a
// matching account.
func (s *Service) SetRootMarkers(markers []string) {
	s.rootMarkers = markers
}

func (s *Service) reindex() {
	s.byCode = make(map[string]int, len(s.accounts))
	for i, a := range s.accounts {
		if _, ok := s.byCode[a.Code]; !ok {
			s.byCode[a.Code] = i
		}
	}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by code.
func (s *Service) Get(code string) (model.Account, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Exists reports whether a code exists.
func (s *Service) Exists(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// Subunits returns the distinct business subunit ids in first-seen order.
func (s *Service) Subunits() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range s.accounts {
		if !seen[a.BusinessSubunit] {
			seen[a.BusinessSubunit] = true
			ids = append(ids, a.BusinessSubunit)
		}
	}
	return ids
}

// BySubunit returns the accounts of one business subunit.
func (s *Service) BySubunit(id string) []model.Account {
	return s.filter(func(a model.Account) bool { return a.BusinessSubunit == id })
}

// ByStatement returns the accounts reported on one statement.
func (s *Service) ByStatement(st model.StatementType) []model.Account {
	return s.filter(func(a model.Account) bool { return a.Statement == st })
}

// Filter narrows a Search. Empty fields match everything.
type Filter struct {
	Subunit   string
	Type      model.AccountType
	Statement model.StatementType
}

// Search matches query case-insensitively against code, name and English name.
func (s *Service) Search(query string, f Filter) []model.Account {
	q := strings.ToLower(query)
	return s.filter(func(a model.Account) bool {
		if f.Subunit != "" && a.BusinessSubunit != f.Subunit {
			return false
		}
		if f.Type != "" && a.Type != f.Type {
			return false
		}
		if f.Statement != "" && a.Statement != f.Statement {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.NameEnglish), q)
	})
}

// Children returns the direct children of parent, ordered by order with
// unordered accounts last.
func (s *Service) Children(parent string) []model.Account {
	children := s.filter(func(a model.Account) bool { return a.ParentCode == parent })
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i].Order, children[j].Order
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Decimal.LessThan(b.Decimal)
	})
	return children
}

// Tree is an account with its descendants.
type Tree struct {
	Account  model.Account
	Children []Tree
}

// Subtree returns the tree rooted at code, or false when code is unknown.
func (s *Service) Subtree(code string) (Tree, bool) {
	a, ok := s.Get(code)
	if !ok {
		return Tree{}, false
	}
	return s.subtree(a, map[string]bool{}), true
}

func (s *Service) subtree(a model.Account, visiting map[string]bool) Tree {
	t := Tree{Account: a}
	if visiting[a.Code] {
		return t
	}
	visiting[a.Code] = true
	for _, c := range s.Children(a.Code) {
		t.Children = append(t.Children, s.subtree(c, visiting))
	}
	delete(visiting, a.Code)
	return t
}

// NextOrderForParent suggests the order for a new child of parent.
func (s *Service) NextOrderForParent(parent string) decimal.Decimal {
	var highest decimal.NullDecimal
	for _, a := range s.accounts {
		if a.ParentCode != parent || !a.Order.Valid {
			continue
		}
		if !highest.Valid || a.Order.Decimal.GreaterThan(highest.Decimal) {
			highest = a.Order
		}
	}
	if !highest.Valid {
		return decimal.NewFromInt(DefaultFirstOrder)
	}
	return highest.Decimal.Floor().Add(decimal.NewFromInt(OrderStep))
}

func (s *Service) filter(keep func(model.Account) bool) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if keep(a) {
			result = append(result, a)
		}
	}
	return result
}
