package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// AnalysisJob is one analysis request taken off the jobs queue. Empty
// hyperparameters fall back to the pipeline defaults.
type AnalysisJob struct {
	JobID         string  `json:"job_id"`
	Family        string  `json:"family"`
	SnapshotStart string  `json:"snapshot_start,omitempty"`
	SnapshotEnd   string  `json:"snapshot_end,omitempty"`
	Strategy      string  `json:"strategy,omitempty"`
	Clusters      int     `json:"clusters,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
	Metric        string  `json:"metric,omitempty"`
	MinSupport    float64 `json:"min_support,omitempty"`
	RuleMetric    string  `json:"rule_metric,omitempty"`
	MinThreshold  float64 `json:"min_threshold,omitempty"`
	MarginFactor  float64 `json:"margin_factor,omitempty"`
}

func NewAnalysisJob(family string) *AnalysisJob {
	return &AnalysisJob{
		JobID:  uuid.NewString(),
		Family: family,
	}
}

func (j *AnalysisJob) Marshal() ([]byte, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal AnalysisJob: %v", err)
	}
	return data, nil
}

func AnalysisJobFromBytes(data []byte) (*AnalysisJob, error) {
	var j AnalysisJob
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AnalysisJob: %v", err)
	}
	return &j, nil
}

// Window parses the job's snapshot dates. A missing start means the beginning
// of time, a missing end means today.
func (j *AnalysisJob) Window() (start, end time.Time, err error) {
	if j.SnapshotStart != "" {
		start, err = time.Parse(dateLayout, j.SnapshotStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad snapshot_start %q: %v", j.SnapshotStart, err)
		}
	}
	if j.SnapshotEnd != "" {
		end, err = time.Parse(dateLayout, j.SnapshotEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad snapshot_end %q: %v", j.SnapshotEnd, err)
		}
	} else {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return start, end, nil
}
