// Package effects holds the facts bound nodes propagate besides types: whether
// they throw or return, which outside state they touch and how their values
// are consumed.
package effects

// Prediction is a three-valued answer to "does this effect happen?".
type Prediction int

const (
	Never Prediction = iota
	Maybe
	Guaranteed
)

func (p Prediction) String() string {
	switch p {
	case Never:
		return "never"
	case Guaranteed:
		return "guaranteed"
	default:
		return "maybe"
	}
}

// Seq combines the predictions of two nodes executed one after another.
// Once a guaranteed effect happens the rest is unreachable for that effect.
func Seq(a, b Prediction) Prediction {
	switch {
	case a == Guaranteed || b == Guaranteed:
		return Guaranteed
	case a == Never && b == Never:
		return Never
	}
	return Maybe
}

// SeqAll folds Seq over a sequence of predictions.
func SeqAll(ps ...Prediction) Prediction {
	result := Never
	for _, p := range ps {
		result = Seq(result, p)
		if result == Guaranteed {
			return Guaranteed
		}
	}
	return result
}

// Branch combines the predictions of alternative arms.
func Branch(arms ...Prediction) Prediction {
	if len(arms) == 0 {
		return Never
	}
	all, none := true, true
	for _, p := range arms {
		all = all && p == Guaranteed
		none = none && p == Never
	}
	switch {
	case all:
		return Guaranteed
	case none:
		return Never
	}
	return Maybe
}

// Optional weakens a prediction for code that may not run at all.
func Optional(p Prediction) Prediction {
	if p == Guaranteed {
		return Maybe
	}
	return p
}
