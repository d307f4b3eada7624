package rule

// Outcome is the result of evaluating one requirement tree against a
// stats snapshot.
type Outcome struct {
	Satisfied bool
	// Progress is in [0,1]: leaves report value/threshold clamped to 1,
	// AND nodes average their children, OR nodes take the maximum.
	Progress float64
	// SatisfiedKinds lists the leaf kinds that individually met their
	// threshold, for progress UIs.
	SatisfiedKinds []string
	// UnknownKinds lists leaf kinds the snapshot does not back. Such
	// leaves evaluate to unsatisfied with zero progress; callers should
	// log them for catalog maintenance, never fail on them.
	UnknownKinds []string
}

// Evaluate walks the expression against the snapshot values. It is pure:
// no I/O, no logging, no mutation of inputs, so it is safe to share
// between the real-time and batch paths.
func Evaluate(expr Expression, values map[string]float64) Outcome {
	if expr.IsLeaf() {
		return evaluateLeaf(expr, values)
	}
	if expr.All != nil {
		return evaluateAll(expr.All, values)
	}
	if expr.Any != nil {
		return evaluateAny(expr.Any, values)
	}
	// Empty node: validation rejects this at write time, but a stored
	// row can still predate stricter validation.
	return Outcome{}
}

func evaluateLeaf(expr Expression, values map[string]float64) Outcome {
	if !IsKnownKind(expr.Kind) {
		return Outcome{UnknownKinds: []string{expr.Kind}}
	}

	// Threshold <= 0 is invalid input; treat as trivially satisfied to
	// guard against divide-by-zero.
	if expr.Threshold <= 0 {
		return Outcome{
			Satisfied:      true,
			Progress:       1.0,
			SatisfiedKinds: []string{expr.Kind},
		}
	}

	value := values[expr.Kind]
	progress := value / expr.Threshold
	if progress > 1.0 {
		progress = 1.0
	}
	out := Outcome{
		Satisfied: value >= expr.Threshold,
		Progress:  progress,
	}
	if out.Satisfied {
		out.SatisfiedKinds = []string{expr.Kind}
	}
	return out
}

func evaluateAll(children []Expression, values map[string]float64) Outcome {
	out := Outcome{Satisfied: true}
	var sum float64
	for _, child := range children {
		childOut := Evaluate(child, values)
		sum += childOut.Progress
		if !childOut.Satisfied {
			out.Satisfied = false
		}
		out.SatisfiedKinds = append(out.SatisfiedKinds, childOut.SatisfiedKinds...)
		out.UnknownKinds = append(out.UnknownKinds, childOut.UnknownKinds...)
	}
	if len(children) > 0 {
		out.Progress = sum / float64(len(children))
	}
	return out
}

func evaluateAny(children []Expression, values map[string]float64) Outcome {
	var out Outcome
	for _, child := range children {
		childOut := Evaluate(child, values)
		if childOut.Satisfied {
			out.Satisfied = true
		}
		if childOut.Progress > out.Progress {
			out.Progress = childOut.Progress
		}
		out.SatisfiedKinds = append(out.SatisfiedKinds, childOut.SatisfiedKinds...)
		out.UnknownKinds = append(out.UnknownKinds, childOut.UnknownKinds...)
	}
	return out
}
