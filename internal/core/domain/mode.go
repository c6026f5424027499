package domain

// Mode selects the pricing variant. Weighted prices from aggregate group value
// spread over the advertiser's total engagement, unweighted from the
// per-engagement price alone. NonTruthful prices from the advertiser's own
// group instead of the opposing one and is only used to compute bounds.
type Mode struct {
	Weighted    bool
	NonTruthful bool
}

// Allocation mode labels written to the results table.
const (
	LabelRandom   = "random"
	LabelExtended = "extended"
	LabelBound    = "bound"
)

// Label returns the results-table label for a run. Non-truthful runs are
// labelled as bounds regardless of the engine.
func Label(extended, nonTruthful bool) string {
	switch {
	case nonTruthful:
		return LabelBound
	case extended:
		return LabelExtended
	default:
		return LabelRandom
	}
}
