package transform

import (
	"fmt"

	"github.com/cleared-dev/coa/internal/model"
)

// Validity bounds stamped on every central mapping row.
const (
	ValidFrom = "20000101"
	ValidTo   = "30000101"
)

// MaxDescriptionLen is the longest central mapping description, in characters.
const MaxDescriptionLen = 1024

// MatchSubunits returns the subunits whose id equals subunitID, in table order.
func MatchSubunits(subunits []model.BusinessSubunit, subunitID string) []model.BusinessSubunit {
	var matched []model.BusinessSubunit
	for _, s := range subunits {
		if s.ID == subunitID {
			matched = append(matched, s)
		}
	}
	return matched
}

// SubunitCOA cross-joins the enriched COA with the subunits matching
// subunitID. No match yields zero rows, not an error.
func SubunitCOA(nodes []model.EnrichedNode, subunitID string, subunits []model.BusinessSubunit) ([]model.SubunitAccount, error) {
	if nodes == nil {
		return nil, fmt.Errorf("subunit COA for %s: %w", subunitID, ErrNoOutput)
	}
	if subunits == nil {
		return nil, fmt.Errorf("subunit COA for %s: %w", subunitID, ErrNoSubunits)
	}

	matched := MatchSubunits(subunits, subunitID)
	out := make([]model.SubunitAccount, 0, len(nodes)*len(matched))
	for _, n := range nodes {
		for _, s := range matched {
			out = append(out, model.SubunitAccount{SubunitID: s.ID, EnrichedNode: n})
		}
	}
	return out, nil
}

// CentralMapping cross-joins the raw input accounts with the subunits
// matching subunitID, mapping each source code to its central code.
func CentralMapping(input []model.Account, subunitID string, subunits []model.BusinessSubunit) ([]model.CentralMapping, error) {
	if input == nil {
		return nil, fmt.Errorf("central mapping for %s: %w", subunitID, ErrNoInput)
	}
	if subunits == nil {
		return nil, fmt.Errorf("central mapping for %s: %w", subunitID, ErrNoSubunits)
	}

	matched := MatchSubunits(subunits, subunitID)
	out := make([]model.CentralMapping, 0, len(input)*len(matched))
	for _, a := range input {
		for _, s := range matched {
			out = append(out, model.CentralMapping{
				SubunitID:   s.ID,
				SourceCode:  a.Code,
				CentralCode: a.CentralCode,
				ValidFrom:   ValidFrom,
				ValidTo:     ValidTo,
				Description: truncate(a.Name, MaxDescriptionLen),
			})
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
