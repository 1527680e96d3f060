package accounts

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cleared-dev/coa/internal/model"
)

// Reasons an edit is rejected.
var (
	ErrMissingField    = errors.New("required field missing")
	ErrDuplicateCode   = errors.New("code already exists in business subunit")
	ErrTypeMismatch    = errors.New("account type does not fit statement type")
	ErrUnknownParent   = errors.New("parent code does not exist")
	ErrAccountNotFound = errors.New("account not found")
	ErrHasChildren     = errors.New("account has children")
)

// EditError is a rejected Add, Update or Delete.
type EditError struct {
	Op     string
	Code   string
	Err    error
	Detail string
}

func (e *EditError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Code, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *EditError) Unwrap() error {
	return e.Err
}

// Find returns the account with code in one business subunit.
func (s *Service) Find(subunit, code string) (model.Account, bool) {
	i, ok := s.index(subunit, code)
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Add appends a new account after checking it against the chart.
func (s *Service) Add(a model.Account) error {
	if err := s.check("add", a, -1); err != nil {
		return err
	}
	if _, dup := s.index(a.BusinessSubunit, a.Code); dup {
		return &EditError{Op: "add", Code: a.Code, Err: ErrDuplicateCode, Detail: a.BusinessSubunit}
	}

	s.accounts = append(s.accounts, a)
	s.reindex()
	return nil
}

// Update replaces the account with code in subunit by a. Renaming an
// account that other accounts hang under is rejected.
func (s *Service) Update(subunit, code string, a model.Account) error {
	i, ok := s.index(subunit, code)
	if !ok {
		return &EditError{Op: "update", Code: code, Err: ErrAccountNotFound, Detail: subunit}
	}
	if err := s.check("update", a, i); err != nil {
		return err
	}
	if j, dup := s.index(a.BusinessSubunit, a.Code); dup && j != i {
		return &EditError{Op: "update", Code: a.Code, Err: ErrDuplicateCode, Detail: a.BusinessSubunit}
	}
	if a.Code != code {
		if n := len(s.Children(code)); n > 0 {
			return &EditError{Op: "update", Code: code, Err: ErrHasChildren, Detail: fmt.Sprintf("%d children keep the old code", n)}
		}
	}

	s.accounts[i] = a
	s.reindex()
	return nil
}

// Delete removes the account with code in subunit. Accounts with children
// cannot be deleted.
func (s *Service) Delete(subunit, code string) error {
	i, ok := s.index(subunit, code)
	if !ok {
		return &EditError{Op: "delete", Code: code, Err: ErrAccountNotFound, Detail: subunit}
	}
	if n := len(s.Children(code)); n > 0 {
		return &EditError{Op: "delete", Code: code, Err: ErrHasChildren, Detail: fmt.Sprintf("%d children", n)}
	}

	s.accounts = slices.Delete(s.accounts, i, i+1)
	s.reindex()
	return nil
}

// check applies the per-account edit rules. self is the row being
// replaced, or -1 for a new account.
func (s *Service) check(op string, a model.Account, self int) error {
	required := []struct{ col, value string }{
		{ColCode, a.Code},
		{ColName, a.Name},
		{ColType, string(a.Type)},
		{ColStatement, string(a.Statement)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &EditError{Op: op, Code: a.Code, Err: ErrMissingField, Detail: r.col}
		}
	}

	switch a.Statement {
	case model.StatementBalanceSheet:
		if a.Type != model.AccountTypeAsset && a.Type != model.AccountTypeLiability {
			return &EditError{Op: op, Code: a.Code, Err: ErrTypeMismatch, Detail: "BS accounts are A or P, got " + string(a.Type)}
		}
	case model.StatementProfitLoss:
		if a.Type != model.AccountTypeRevenue && a.Type != model.AccountTypeCost {
			return &EditError{Op: op, Code: a.Code, Err: ErrTypeMismatch, Detail: "PL accounts are R or C, got " + string(a.Type)}
		}
	}

	if a.ParentCode == "" || slices.Contains(s.rootMarkers, a.ParentCode) {
		return nil
	}
	if a.ParentCode == a.Code {
		return &EditError{Op: op, Code: a.Code, Err: ErrUnknownParent, Detail: "an account cannot be its own parent"}
	}
	for i, other := range s.accounts {
		if i != self && other.Code == a.ParentCode {
			return nil
		}
	}
	return &EditError{Op: op, Code: a.Code, Err: ErrUnknownParent, Detail: a.ParentCode}
}

func (s *Service) index(subunit, code string) (int, bool) {
	for i, a := range s.accounts {
		if a.BusinessSubunit == subunit && a.Code == code {
			return i, true
		}
	}
	return -1, false
}
