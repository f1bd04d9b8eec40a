package hyp3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rkm/hyp3-prep/internal/asf"
)

type fakeGranules struct {
	granules map[string]asf.Granule
	err      error
	calls    int
}

func (f *fakeGranules) GranuleDetails(_ context.Context, names []string) (map[string]asf.Granule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.granules, nil
}

func succeededJob(id, granule string) Job {
	return Job{
		JobID:         id,
		JobType:       "RTC_GAMMA",
		StatusCode:    StatusSucceeded,
		JobParameters: JobParameters{Granules: []string{granule}},
	}
}

func TestFilter_StatusAndExpiry(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-24 * time.Hour)

	failed := succeededJob("job-failed", "S1A_B")
	failed.StatusCode = StatusFailed
	old := succeededJob("job-expired", "S1A_C")
	old.ExpirationTime = &expired

	jobs := []Job{succeededJob("job-ok", "S1A_A"), failed, old}

	src := &fakeGranules{}
	got, err := Filter(context.Background(), jobs, Criteria{Now: now}, src)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "job-ok" {
		t.Fatalf("expected only job-ok, got %+v", got)
	}
	if src.calls != 0 {
		t.Errorf("no granule lookup expected for status-only criteria, got %d calls", src.calls)
	}
}

func TestFilter_JobType(t *testing.T) {
	insar := succeededJob("job-insar", "S1A_B")
	insar.JobType = "INSAR_GAMMA"
	jobs := []Job{succeededJob("job-rtc", "S1A_A"), insar}

	got, err := Filter(context.Background(), jobs, Criteria{JobType: "RTC_GAMMA"}, &fakeGranules{})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "job-rtc" {
		t.Fatalf("expected only job-rtc, got %+v", got)
	}
}

func TestFilter_OrbitalCriteria(t *testing.T) {
	jobs := []Job{
		succeededJob("job-1", "S1A_A"),
		succeededJob("job-2", "S1A_B"),
		succeededJob("job-3", "S1A_C"),
	}
	src := &fakeGranules{granules: map[string]asf.Granule{
		"S1A_A": {Name: "S1A_A", PathNumber: 114, FlightDirection: "DESCENDING",
			StartTime: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		"S1A_B": {Name: "S1A_B", PathNumber: 41, FlightDirection: "DESCENDING",
			StartTime: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)},
		"S1A_C": {Name: "S1A_C", PathNumber: 114, FlightDirection: "ASCENDING",
			StartTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	crit := Criteria{
		Start:           &start,
		End:             &end,
		Path:            114,
		FlightDirection: "DESCENDING",
	}

	got, err := Filter(context.Background(), jobs, crit, src)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "job-1" {
		t.Fatalf("expected only job-1, got %+v", got)
	}
	if src.calls != 1 {
		t.Errorf("expected one batched granule lookup, got %d", src.calls)
	}
}

func TestFilter_MissingGranuleMetadata(t *testing.T) {
	jobs := []Job{succeededJob("job-1", "S1A_UNKNOWN")}
	src := &fakeGranules{granules: map[string]asf.Granule{}}

	_, err := Filter(context.Background(), jobs, Criteria{Path: 114}, src)
	if err == nil {
		t.Fatal("expected error for unresolvable granule")
	}
}

func TestFilter_GranuleLookupError(t *testing.T) {
	cause := errors.New("asf down")
	jobs := []Job{succeededJob("job-1", "S1A_A")}

	_, err := Filter(context.Background(), jobs, Criteria{FlightDirection: "ASCENDING"}, &fakeGranules{err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}
