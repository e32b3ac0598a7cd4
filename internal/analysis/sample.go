package analysis

import (
	"sort"

	"github.com/logsage/logsage/pkg/models"
)

// DefaultSampleBudget caps how many records an augmentation prompt carries.
const DefaultSampleBudget = 50

// PrepareSample builds a bounded representative sample of records for AI
// augmentation: error- and warning-level records first (up to half the
// budget), the remainder filled with an evenly strided slice of the rest,
// and the combined sample re-sorted by timestamp.
func PrepareSample(records []models.LogRecord, budget int) []models.LogRecord {
	if budget <= 0 {
		budget = DefaultSampleBudget
	}

	var priority, other []models.LogRecord
	for _, rec := range records {
		if rec.IsErrorLevel() || rec.IsWarningLevel() {
			priority = append(priority, rec)
		} else {
			other = append(other, rec)
		}
	}

	if len(priority) > budget/2 {
		priority = priority[:budget/2]
	}

	remaining := budget - len(priority)
	sample := append([]models.LogRecord{}, priority...)
	if remaining > 0 && len(other) > 0 {
		step := len(other) / remaining
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(other) && remaining > 0; i += step {
			sample = append(sample, other[i])
			remaining--
		}
	}

	sort.SliceStable(sample, func(i, j int) bool {
		return tsOrZero(sample[i]).Before(tsOrZero(sample[j]))
	})
	return sample
}
