package transit

import (
	"time"

	"github.com/randytsao24/meetmta/internal/models"
)

// MockAlerts returns the built-in alert set served when the alerts feed has
// never been read successfully. Times are relative to now.
func MockAlerts(now time.Time) []models.ServiceAlert {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	return []models.ServiceAlert{
		{
			ID:            "weekend-work-nqrw",
			Title:         "Weekend Service Changes",
			Description:   "N, Q, R, and W trains running with delays due to signal modernization work between Manhattan and Queens. Allow extra travel time.",
			AffectedLines: []string{"N", "Q", "R", "W"},
			Severity:      models.SeverityWarning,
			StartTime:     at(-2 * time.Hour),
			EndTime:       at(24 * time.Hour),
		},
		{
			ID:            "l-train-normal",
			Title:         "L Train Service Update",
			Description:   "L train service is running normally with minor delays during peak hours.",
			AffectedLines: []string{"L"},
			Severity:      models.SeverityInfo,
			StartTime:     at(-30 * time.Minute),
		},
		{
			ID:            "bdfm-delays",
			Title:         "B, D, F, M Train Delays",
			Description:   "B, D, F, and M trains experiencing delays due to train traffic ahead. Expect delays of 10-15 minutes.",
			AffectedLines: []string{"B", "D", "F", "M"},
			Severity:      models.SeverityWarning,
			StartTime:     at(-45 * time.Minute),
		},
		{
			ID:            "ace-service-change",
			Title:         "A, C, E Service Advisory",
			Description:   "A, C, and E trains running on modified schedule due to track maintenance. Some stations may be skipped.",
			AffectedLines: []string{"A", "C", "E"},
			Severity:      models.SeveritySevere,
			StartTime:     at(-3 * time.Hour),
			EndTime:       at(6 * time.Hour),
		},
		{
			ID:            "456-good-service",
			Title:         "Good Service",
			Description:   "4, 5, and 6 trains are running on schedule with no delays.",
			AffectedLines: []string{"4", "5", "6"},
			Severity:      models.SeverityInfo,
			StartTime:     at(-10 * time.Minute),
		},
		{
			ID:            "123-weekend-service",
			Title:         "1, 2, 3 Train Weekend Service",
			Description:   "1, 2, and 3 trains running on weekend schedule with some service changes in Manhattan.",
			AffectedLines: []string{"1", "2", "3"},
			Severity:      models.SeverityInfo,
			StartTime:     at(-1 * time.Hour),
			EndTime:       at(48 * time.Hour),
		},
		{
			ID:            "7-express-service",
			Title:         "7 Express Limited Service",
			Description:   "7 Express service is limited due to signal problems. Local 7 service is running normally.",
			AffectedLines: []string{"7"},
			Severity:      models.SeverityWarning,
			StartTime:     at(-2 * time.Hour),
		},
		{
			ID:            "g-shuttle-service",
			Title:         "G Train Shuttle Service",
			Description:   "G train running shuttle service between Court Sq and Church Ave due to track work.",
			AffectedLines: []string{"G"},
			Severity:      models.SeveritySevere,
			StartTime:     at(-4 * time.Hour),
			EndTime:       at(12 * time.Hour),
		},
	}
}
