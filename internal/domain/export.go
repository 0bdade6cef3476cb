package domain

// ExportOutcome classifies a calendar export.
type ExportOutcome string

const (
	// ExportNothing means there was nothing to submit. It is not a failure.
	ExportNothing ExportOutcome = "nothing_to_export"
	// ExportSucceeded means at least one event was created.
	ExportSucceeded ExportOutcome = "exported"
	// ExportFailed means every submitted event was rejected.
	ExportFailed ExportOutcome = "failed"
)

// ExportResult reports how many of the schedule's activities reached the
// calendar. Skipped counts activities that have no date.
type ExportResult struct {
	Outcome ExportOutcome
	Total   int
	Created int
	Failed  int
	Skipped int
}

// Success reports whether at least one event was created.
func (r ExportResult) Success() bool {
	return r.Created > 0
}
