package hyp3

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rkm/hyp3-prep/internal/asf"
)

// GranuleSource resolves orbital metadata for scene names. The ASF search
// client implements it.
type GranuleSource interface {
	GranuleDetails(ctx context.Context, names []string) (map[string]asf.Granule, error)
}

// Criteria narrows a subscription's job list to the jobs worth downloading.
// Zero values mean "any": an empty JobType matches all job types, a zero Path
// matches every path, and so on.
type Criteria struct {
	// JobType restricts jobs to one processing type, e.g. "RTC_GAMMA".
	JobType string

	// Start and End bound the granule acquisition time (inclusive).
	Start *time.Time
	End   *time.Time

	// Path restricts to one relative orbit (ASF path number).
	Path int

	// FlightDirection restricts to "ASCENDING" or "DESCENDING" passes.
	FlightDirection string

	// Now anchors the expiry check; the zero value means time.Now().
	Now time.Time
}

// Filter narrows jobs to those that succeeded, have not expired, and match
// the criteria. Path, flight-direction and date filters need orbital
// metadata, which is looked up through granules in one batched call. Jobs
// whose granule cannot be resolved are rejected with an error rather than
// silently dropped.
func Filter(ctx context.Context, jobs []Job, crit Criteria, granules GranuleSource) ([]Job, error) {
	now := crit.Now
	if now.IsZero() {
		now = time.Now()
	}

	var candidates []Job
	for _, job := range jobs {
		if !job.Succeeded() || job.Expired(now) {
			continue
		}
		if crit.JobType != "" && job.JobType != crit.JobType {
			continue
		}
		candidates = append(candidates, job)
	}

	slog.Default().DebugContext(ctx, "filtered jobs by status",
		slog.Int("total", len(jobs)),
		slog.Int("candidates", len(candidates)),
	)

	if !crit.needsGranules() || len(candidates) == 0 {
		return candidates, nil
	}

	names := make([]string, 0, len(candidates))
	for _, job := range candidates {
		name := job.Granule()
		if name == "" {
			return nil, fmt.Errorf("job %s has no granule to filter on", job.JobID)
		}
		names = append(names, name)
	}

	details, err := granules.GranuleDetails(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve granule metadata: %w", err)
	}

	var matched []Job
	for _, job := range candidates {
		granule, ok := details[job.Granule()]
		if !ok {
			return nil, fmt.Errorf("no ASF metadata for granule %s (job %s)", job.Granule(), job.JobID)
		}
		if crit.matches(granule) {
			matched = append(matched, job)
		}
	}
	return matched, nil
}

// needsGranules reports whether any criterion requires orbital metadata.
func (c Criteria) needsGranules() bool {
	return c.Start != nil || c.End != nil || c.Path != 0 || c.FlightDirection != ""
}

func (c Criteria) matches(g asf.Granule) bool {
	if c.Start != nil && g.StartTime.Before(*c.Start) {
		return false
	}
	if c.End != nil && g.StartTime.After(*c.End) {
		return false
	}
	if c.Path != 0 && g.PathNumber != c.Path {
		return false
	}
	if c.FlightDirection != "" && g.FlightDirection != c.FlightDirection {
		return false
	}
	return true
}
