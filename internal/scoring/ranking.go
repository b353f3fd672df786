package scoring

import (
	"sort"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

// Rank orders results by general average, best first, and numbers them
// from 1. Equal averages fall back to student id so the order never depends
// on how the cohort was fetched.
func Rank(results []models.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].GeneralAverage != results[j].GeneralAverage {
			return results[i].GeneralAverage > results[j].GeneralAverage
		}
		return results[i].Student.ID < results[j].Student.ID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
