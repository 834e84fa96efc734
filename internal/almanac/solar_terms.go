package almanac

// ApproxSolarTerm is one entry of the fixed fallback jieqi calendar: the
// twelve month-start terms (jie) at year-independent month/day positions.
// Real solar terms drift about a day across years; this table is a
// best-effort approximation and results derived from it must be flagged
// as approximate.
type ApproxSolarTerm struct {
	Name  string
	Month int
	Day   int
}

var ApproxSolarTerms = []ApproxSolarTerm{
	{"小寒", 1, 6},
	{"立春", 2, 4},
	{"惊蛰", 3, 6},
	{"清明", 4, 5},
	{"立夏", 5, 6},
	{"芒种", 6, 6},
	{"小暑", 7, 7},
	{"立秋", 8, 8},
	{"白露", 9, 8},
	{"寒露", 10, 8},
	{"立冬", 11, 7},
	{"大雪", 12, 7},
}
