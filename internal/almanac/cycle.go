package almanac

// SixtyCycle is the ordered list of the sixty stem-branch terms, starting
// at 甲子.
var SixtyCycle = buildSixtyCycle()

var cycleIndex = func() map[string]int {
	m := make(map[string]int, len(SixtyCycle))
	for i, term := range SixtyCycle {
		m[term] = i
	}
	return m
}()

func buildSixtyCycle() []string {
	terms := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		terms = append(terms, Stems[i%10]+Branches[i%12])
	}
	return terms
}

// CycleIndex locates a stem-branch term in the sixty cycle.
func CycleIndex(term string) (int, bool) {
	i, ok := cycleIndex[term]
	return i, ok
}

// CycleStep walks the sixty cycle from index i by delta steps, wrapping in
// both directions.
func CycleStep(i, delta int) string {
	n := len(SixtyCycle)
	idx := ((i+delta)%n + n) % n
	return SixtyCycle[idx]
}
