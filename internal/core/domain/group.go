package domain

import "slices"

// Group is a run-scoped partition of advertisers. Membership is by identity.
type Group []*Advertiser

// Contains reports whether a is a member of the group.
func (g Group) Contains(a *Advertiser) bool {
	return slices.Contains(g, a)
}

// Reference holds a group's monopoly figures: the per-engagement price and the
// aggregate value at the group's revenue-maximising cutoff.
type Reference struct {
	ValuePerEngagement float64
	Value              float64
}

// Market bundles both sides of a clearing: the groups and their references.
type Market struct {
	A, B       Group
	RefA, RefB Reference
}

// Advertisers returns group A followed by group B in a fresh slice.
func (m Market) Advertisers() []*Advertiser {
	all := make([]*Advertiser, 0, len(m.A)+len(m.B))
	all = append(all, m.A...)
	return append(all, m.B...)
}

// ResetBudgets restores the remaining budget of every advertiser in the market.
func (m Market) ResetBudgets() {
	for _, a := range m.A {
		a.ResetRemainingBudget()
	}
	for _, a := range m.B {
		a.ResetRemainingBudget()
	}
}
