package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "A"
	AccountTypeLiability AccountType = "P" // liabilities and equity
	AccountTypeRevenue   AccountType = "R"
	AccountTypeCost      AccountType = "C"
)

// StatementType names the financial statement an account reports on.
// The same literals are used as the parent code of root accounts.
type StatementType string

const (
	StatementBalanceSheet StatementType = "BS"
	StatementProfitLoss   StatementType = "PL"
)

// RootMarkers are the parent codes that anchor a hierarchy.
var RootMarkers = []string{string(StatementBalanceSheet), string(StatementProfitLoss)}

// Account is one row of the flat COA input.
type Account struct {
	BusinessSubunit string
	Order           decimal.NullDecimal // invalid when the source value is not numeric
	Code            string
	Name            string
	ParentCode      string
	Type            AccountType
	Statement       StatementType
	NameEnglish     string
	CentralCode     string
}

// HasOrder reports whether the account carries a numeric order.
func (a Account) HasOrder() bool {
	return a.Order.Valid
}
