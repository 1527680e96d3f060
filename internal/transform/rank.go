// Package transform turns a flat chart of accounts into the enriched,
// hierarchy-flattened datasets used for financial consolidation.
//
// Every function here is a pure transform over in-memory slices: no I/O,
// no logging, no state kept between calls.
package transform

import (
	"sort"

	"github.com/cleared-dev/coa/internal/id"
	"github.com/cleared-dev/coa/internal/model"
)

// Ranked is an account that carries a numeric order, with its sibling rank.
type Ranked struct {
	model.Account
	Rank string
}

// siblingKey identifies a sibling group.
type siblingKey struct {
	statement model.StatementType
	parent    string
}

func keyOf(a model.Account) siblingKey {
	return siblingKey{statement: a.Statement, parent: a.ParentCode}
}

// Rank drops accounts without a numeric order and numbers the rest 1..N
// within each (statement type, parent code) group by ascending order.
// Equal orders keep input order. The result preserves input order.
func Rank(accounts []model.Account) []Ranked {
	ranked := make([]Ranked, 0, len(accounts))
	groups := make(map[siblingKey][]int)
	var groupOrder []siblingKey
	for _, a := range accounts {
		if !a.HasOrder() {
			continue
		}
		k := keyOf(a)
		if _, seen := groups[k]; !seen {
			groupOrder = append(groupOrder, k)
		}
		groups[k] = append(groups[k], len(ranked))
		ranked = append(ranked, Ranked{Account: a})
	}

	for _, k := range groupOrder {
		members := groups[k]
		sort.SliceStable(members, func(i, j int) bool {
			return ranked[members[i]].Order.Decimal.LessThan(ranked[members[j]].Order.Decimal)
		})
		for pos, idx := range members {
			ranked[idx].Rank = id.FormatRank(pos + 1)
		}
	}
	return ranked
}

// largestSiblingGroup returns the size of the biggest rankable sibling group.
func largestSiblingGroup(accounts []model.Account) int {
	sizes := make(map[siblingKey]int)
	largest := 0
	for _, a := range accounts {
		if !a.HasOrder() {
			continue
		}
		k := keyOf(a)
		sizes[k]++
		if sizes[k] > largest {
			largest = sizes[k]
		}
	}
	return largest
}
