package search

// tracker holds the current best candidate/fitness pair and the improvement
// comparator. A new pair replaces the old one only on strict improvement in
// the configured direction; ties never update.
type tracker struct {
	maximize bool
	best     *Result
}

func (t *tracker) improves(fitness float64) bool {
	if t.best == nil {
		return true
	}
	if t.maximize {
		return fitness > t.best.Fitness
	}
	return fitness < t.best.Fitness
}

// update replaces the best pair and returns the previous one.
func (t *tracker) update(c Candidate, fitness float64) *Result {
	prev := t.best
	t.best = &Result{Candidate: c, Fitness: fitness}
	return prev
}
