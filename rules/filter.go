package rules

// ContainsUnknown reports whether r is DontKnow or has a DontKnow anywhere
// below it. Piecewise cases are unwrapped to their rule.
func ContainsUnknown(r Rule) bool {
	if r == nil {
		return false
	}
	switch v := r.(type) {
	case *DontKnow:
		return true
	case *ConstantTimes:
		return ContainsUnknown(v.Substep)
	case *Add:
		return anyUnknown(v.Substeps)
	case *U:
		return ContainsUnknown(v.Substep)
	case *Parts:
		return ContainsUnknown(v.VStep) || ContainsUnknown(v.SecondStep)
	case *CyclicParts:
		for _, p := range v.PartsRules {
			if ContainsUnknown(p) {
				return true
			}
		}
	case *Rewrite:
		return ContainsUnknown(v.Substep)
	case *CompleteSquare:
		return ContainsUnknown(v.Substep)
	case *TrigSubstitution:
		return ContainsUnknown(v.Substep)
	case *Alternative:
		return anyUnknown(v.Alternatives)
	case *Piecewise:
		for _, c := range v.Subfunctions {
			if ContainsUnknown(c.Rule) {
				return true
			}
		}
	}
	return false
}

func anyUnknown(rs []Rule) bool {
	for _, r := range rs {
		if ContainsUnknown(r) {
			return true
		}
	}
	return false
}

// FilterAlternatives drops candidates of an Alternative that contain an
// unknown. When that would leave none, every original candidate is kept.
// Any other rule is returned unchanged. The input is never modified.
func FilterAlternatives(r Rule) Rule {
	alt, ok := r.(*Alternative)
	if !ok {
		return r
	}
	kept := make([]Rule, 0, len(alt.Alternatives))
	for _, c := range alt.Alternatives {
		if !ContainsUnknown(c) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, alt.Alternatives...)
	}
	return &Alternative{Node: alt.Node, Alternatives: kept}
}
