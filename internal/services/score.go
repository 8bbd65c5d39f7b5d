package services

// TotalPoints sums the point values of every catalog question that appears in
// the answer map. Questions without an answer contribute nothing, so a
// partially answered day earns partial credit.
func TotalPoints(answers map[string]string, catalog *Catalog) int {
	total := 0
	for _, q := range catalog.All() {
		if _, ok := answers[q.ID]; ok {
			total += q.Points
		}
	}
	return total
}
