package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/accounts"
	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/model"
)

// accountFlags are the account fields settable from the command line.
type accountFlags struct {
	subunit     string
	code        string
	name        string
	parent      string
	order       string
	typ         string
	statement   string
	nameEnglish string
	centralCode string
}

func (f *accountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "account code")
	cmd.Flags().StringVar(&f.name, "name", "", "account name")
	cmd.Flags().StringVar(&f.parent, "parent", "", "parent code or root marker")
	cmd.Flags().StringVar(&f.order, "order", "", "numeric order among siblings")
	cmd.Flags().StringVar(&f.typ, "type", "", "account type (A, P, R, C)")
	cmd.Flags().StringVar(&f.statement, "statement", "", "statement type (BS, PL)")
	cmd.Flags().StringVar(&f.nameEnglish, "name-eng", "", "English name")
	cmd.Flags().StringVar(&f.centralCode, "central", "", "central chart code")
}

// apply copies the flags set on cmd into a. An empty --order clears the order.
func (f *accountFlags) apply(cmd *cobra.Command, a *model.Account) error {
	set := cmd.Flags().Changed
	if set("code") {
		a.Code = f.code
	}
	if set("name") {
		a.Name = f.name
	}
	if set("parent") {
		a.ParentCode = f.parent
	}
	if set("order") {
		a.Order = accounts.ParseOrder(f.order)
		if f.order != "" && !a.Order.Valid {
			return fmt.Errorf("invalid order %q", f.order)
		}
	}
	if set("type") {
		a.Type = model.AccountType(strings.ToUpper(f.typ))
	}
	if set("statement") {
		a.Statement = model.StatementType(strings.ToUpper(f.statement))
	}
	if set("name-eng") {
		a.NameEnglish = f.nameEnglish
	}
	if set("central") {
		a.CentralCode = f.centralCode
	}
	return nil
}

// editAccounts runs edit over the input table and stores the result.
// edit returns a short description used for output, the run log and the
// commit message.
func editAccounts(cmd *cobra.Command, action string, edit func(p *project, svc *accounts.Service) (string, error)) (err error) {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, p.Close()) }()
	ctx := cmd.Context()

	input, err := p.readInput(ctx)
	if err != nil {
		return err
	}
	svc := accounts.NewService(input)
	svc.SetRootMarkers(p.cfg.Transform.RootMarkers)

	details, err := edit(p, svc)
	if err != nil {
		return err
	}
	rows := svc.All()
	if err := p.writeTable(ctx, action, p.cfg.Tables.Input, dataset.AccountsTable(rows), details); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d rows)\n", p.cfg.Tables.Input, details, len(rows))

	_, err = p.commit(ctx, false, fmt.Sprintf("accounts: %s", details))
	return err
}

func newAccountsAddCommand() *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the input table",
		Long: "Add an account to the input table. Without --order the account " +
			"gets the next free order under its parent.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAccounts(cmd, "add", func(p *project, svc *accounts.Service) (string, error) {
				a := model.Account{BusinessSubunit: p.subunitID(f.subunit)}
				if err := f.apply(cmd, &a); err != nil {
					return "", err
				}
				if !cmd.Flags().Changed("order") {
					a.Order.Decimal, a.Order.Valid = svc.NextOrderForParent(a.ParentCode), true
				}
				if err := svc.Add(a); err != nil {
					return "", err
				}
				return fmt.Sprintf("added %s/%s at order %s", a.BusinessSubunit, a.Code, a.Order.Decimal), nil
			})
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.subunit, "subunit", "", "business subunit (default transform.business_subunit)")
	return cmd
}

func newAccountsUpdateCommand() *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "update <code>",
		Short: "Change fields of an account; --code renames it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAccounts(cmd, "update", func(p *project, svc *accounts.Service) (string, error) {
				subunit := p.subunitID(f.subunit)
				a, ok := svc.Find(subunit, args[0])
				if !ok {
					return "", &accounts.EditError{Op: "update", Code: args[0], Err: accounts.ErrAccountNotFound, Detail: subunit}
				}
				if err := f.apply(cmd, &a); err != nil {
					return "", err
				}
				if err := svc.Update(subunit, args[0], a); err != nil {
					return "", err
				}
				if a.Code != args[0] {
					return fmt.Sprintf("updated %s/%s, now %s", subunit, args[0], a.Code), nil
				}
				return fmt.Sprintf("updated %s/%s", subunit, a.Code), nil
			})
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.subunit, "subunit", "", "business subunit of the account (default transform.business_subunit)")
	return cmd
}

func newAccountsDeleteCommand() *cobra.Command {
	var subunit string

	cmd := &cobra.Command{
		Use:   "delete <code>",
		Short: "Remove an account without children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAccounts(cmd, "delete", func(p *project, svc *accounts.Service) (string, error) {
				id := p.subunitID(subunit)
				if err := svc.Delete(id, args[0]); err != nil {
					return "", err
				}
				return fmt.Sprintf("deleted %s/%s", id, args[0]), nil
			})
		},
	}

	cmd.Flags().StringVar(&subunit, "subunit", "", "business subunit of the account (default transform.business_subunit)")
	return cmd
}
