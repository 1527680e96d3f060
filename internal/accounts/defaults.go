package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/coa/internal/model"
)

// DefaultChart returns a starter chart of accounts for a business subunit.
func DefaultChart(subunit string) []model.Account {
	row := func(order int64, code, name, parent string, t model.AccountType, st model.StatementType, eng, central string) model.Account {
		return model.Account{
			BusinessSubunit: subunit,
			Order:           decimal.NewNullDecimal(decimal.NewFromInt(order)),
			Code:            code,
			Name:            name,
			ParentCode:      parent,
			Type:            t,
			Statement:       st,
			NameEnglish:     eng,
			CentralCode:     central,
		}
	}
	bs, pl := model.StatementBalanceSheet, model.StatementProfitLoss
	return []model.Account{
		row(1000, "A", "Assets", "BS", model.AccountTypeAsset, bs, "Assets", "FA"),
		row(1100, "A1", "Current assets", "A", model.AccountTypeAsset, bs, "Current assets", "FA1"),
		row(1110, "A11", "Cash", "A1", model.AccountTypeAsset, bs, "Cash", "FA11"),
		row(1120, "A12", "Receivables", "A1", model.AccountTypeAsset, bs, "Receivables", "FA12"),
		row(1200, "A2", "Fixed assets", "A", model.AccountTypeAsset, bs, "Fixed assets", "FA2"),
		row(2000, "P", "Liabilities and equity", "BS", model.AccountTypeLiability, bs, "Liabilities and equity", "FP"),
		row(2100, "P1", "Equity", "P", model.AccountTypeLiability, bs, "Equity", "FP1"),
		row(2200, "P2", "Payables", "P", model.AccountTypeLiability, bs, "Payables", "FP2"),
		row(3000, "R", "Revenue", "PL", model.AccountTypeRevenue, pl, "Revenue", "FR"),
		row(3100, "R1", "Sales", "R", model.AccountTypeRevenue, pl, "Sales", "FR1"),
		row(4000, "C", "Costs", "PL", model.AccountTypeCost, pl, "Costs", "FC"),
		row(4100, "C1", "Materials", "C", model.AccountTypeCost, pl, "Materials", "FC1"),
		row(4200, "C2", "Services", "C", model.AccountTypeCost, pl, "Services", "FC2"),
	}
}
