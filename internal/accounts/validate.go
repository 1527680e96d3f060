package accounts

import (
	"fmt"
	"slices"

	"github.com/cleared-dev/coa/internal/model"
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        int
	Code        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", e.Rule, e.Code, e.Description)
}

// Validate checks a chart of accounts against four rules:
//  1. asset and liability accounts report on the balance sheet,
//  2. revenue and cost accounts report on the profit and loss statement,
//  3. codes are unique within a business subunit,
//  4. every parent reference resolves to a code or a root marker.
func Validate(accounts []model.Account, rootMarkers []string) []ValidationError {
	var errs []ValidationError

	codes := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		codes[a.Code] = true
	}

	type subunitCode struct{ subunit, code string }
	seen := make(map[subunitCode]bool)

	for _, a := range accounts {
		switch a.Type {
		case model.AccountTypeAsset, model.AccountTypeLiability:
			if a.Statement != model.StatementBalanceSheet {
				errs = append(errs, ValidationError{
					Rule:        1,
					Code:        a.Code,
					Description: fmt.Sprintf("account type %s must report on BS, not %q", a.Type, a.Statement),
				})
			}
		case model.AccountTypeRevenue, model.AccountTypeCost:
			if a.Statement != model.StatementProfitLoss {
				errs = append(errs, ValidationError{
					Rule:        2,
					Code:        a.Code,
					Description: fmt.Sprintf("account type %s must report on PL, not %q", a.Type, a.Statement),
				})
			}
		}

		k := subunitCode{a.BusinessSubunit, a.Code}
		if seen[k] {
			errs = append(errs, ValidationError{
				Rule:        3,
				Code:        a.Code,
				Description: fmt.Sprintf("duplicate code in business subunit %q", a.BusinessSubunit),
			})
		}
		seen[k] = true

		if a.ParentCode != "" && !codes[a.ParentCode] && !slices.Contains(rootMarkers, a.ParentCode) {
			errs = append(errs, ValidationError{
				Rule:        4,
				Code:        a.Code,
				Description: fmt.Sprintf("unknown parent %q", a.ParentCode),
			})
		}
	}

	return errs
}
