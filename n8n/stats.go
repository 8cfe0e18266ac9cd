package n8n

import "time"

// Stats summarizes a set of execution records. All figures are a
// simple reduction over the input list; no extra engine calls are
// made.
type Stats struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	SuccessRate       float64        `json:"successRate"`
	AverageDurationMS float64        `json:"averageDurationMs"`
	LastStartedAt     *time.Time     `json:"lastStartedAt,omitempty"`
}

// ComputeStats reduces execution records into aggregate statistics.
// Success rate counts only finished executions; average duration
// covers executions carrying both start and stop timestamps.
func ComputeStats(execs []Execution) Stats {
	stats := Stats{
		Total:    len(execs),
		ByStatus: make(map[string]int),
	}

	finished := 0
	succeeded := 0
	timed := 0
	var totalDuration time.Duration

	for _, e := range execs {
		stats.ByStatus[e.Status]++

		if e.Finished {
			finished++
			if e.Status == StatusSuccess {
				succeeded++
			}
		}
		if e.StartedAt != nil && e.StoppedAt != nil {
			timed++
			totalDuration += e.StoppedAt.Sub(*e.StartedAt)
		}
		if e.StartedAt != nil && (stats.LastStartedAt == nil || e.StartedAt.After(*stats.LastStartedAt)) {
			started := *e.StartedAt
			stats.LastStartedAt = &started
		}
	}

	if finished > 0 {
		stats.SuccessRate = float64(succeeded) / float64(finished)
	}
	if timed > 0 {
		stats.AverageDurationMS = float64(totalDuration.Milliseconds()) / float64(timed)
	}

	return stats
}
