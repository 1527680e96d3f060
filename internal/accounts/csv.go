package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/coa/internal/model"
)

// Column names of the COA input table.
const (
	ColSubunit     = "PK_BUSINESS_SUBUNIT"
	ColOrder       = "NUM_FIN_STAT_ORDER"
	ColCode        = "CODE_FIN_STAT"
	ColName        = "NAME_FIN_STAT"
	ColParent      = "CODE_PARENT_FIN_STAT"
	ColType        = "TYPE_ACCOUNT"
	ColStatement   = "TYPE_FIN_STATEMENT"
	ColNameEnglish = "NAME_FIN_STAT_ENG"
	ColCentralCode = "FININ_CODE_FIN_STAT"
)

// Header is the column order used when writing the input table.
var Header = []string{
	ColSubunit, ColOrder, ColCode, ColName, ColParent,
	ColType, ColStatement, ColNameEnglish, ColCentralCode,
}

// ReadAccounts reads a COA input CSV. Header names are matched case-insensitively.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return FromRecords(records[0], records[1:])
}

// FromRecords converts a header and data rows into accounts.
func FromRecords(header []string, rows [][]string) ([]model.Account, error) {
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(rows))
	for _, rec := range rows {
		accounts = append(accounts, UnmarshalAccount(idx, rec))
	}
	return accounts, nil
}

// WriteAccounts writes a COA input CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a row in Header order.
func MarshalAccount(acct model.Account) []string {
	order := ""
	if acct.Order.Valid {
		order = acct.Order.Decimal.String()
	}
	return []string{
		acct.BusinessSubunit,
		order,
		acct.Code,
		acct.Name,
		acct.ParentCode,
		string(acct.Type),
		string(acct.Statement),
		acct.NameEnglish,
		acct.CentralCode,
	}
}

// ColumnIndex maps upper-cased column names to positions.
type ColumnIndex map[string]int

// get returns a cell as written. Only header names and the order are trimmed.
func (c ColumnIndex) get(rec []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func indexHeader(header []string) (ColumnIndex, error) {
	idx := make(ColumnIndex, len(header))
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	if _, ok := idx[ColCode]; !ok {
		return nil, errors.New("missing required column " + ColCode)
	}
	return idx, nil
}

// UnmarshalAccount converts a row to an Account. A non-numeric order is not
// an error: it leaves Order invalid so the row is excluded from ranking.
func UnmarshalAccount(idx ColumnIndex, rec []string) model.Account {
	return model.Account{
		BusinessSubunit: idx.get(rec, ColSubunit),
		Order:           ParseOrder(idx.get(rec, ColOrder)),
		Code:            idx.get(rec, ColCode),
		Name:            idx.get(rec, ColName),
		ParentCode:      idx.get(rec, ColParent),
		Type:            model.AccountType(idx.get(rec, ColType)),
		Statement:       model.StatementType(idx.get(rec, ColStatement)),
		NameEnglish:     idx.get(rec, ColNameEnglish),
		CentralCode:     idx.get(rec, ColCentralCode),
	}
}

// ParseOrder parses a numeric order, returning an invalid value for blanks and non-numbers.
func ParseOrder(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
