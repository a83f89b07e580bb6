package stats

import (
	"os"
	"sort"

	"survivorrl/internal/model"
)

// ListComparisonReports reads every comparison report under baseDir, newest
// first. Directories without a comparison.json are skipped.
func ListComparisonReports(baseDir string) ([]model.ModelComparison, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ModelComparison{}, nil
		}
		return nil, err
	}

	reports := make([]model.ModelComparison, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		report, ok, err := ReadComparisonReport(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i].Timestamp, reports[j].Timestamp
		switch {
		case a.Equal(b):
			return reports[i].ID < reports[j].ID
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b.Time)
		}
	})
	return reports, nil
}
