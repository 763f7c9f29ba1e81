package common

import (
	"context"
	"time"

	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/middleware"
	"github.com/Agence-Glanum/customer-portrait/models"
	"github.com/Agence-Glanum/customer-portrait/pipeline"
	"github.com/Agence-Glanum/customer-portrait/protocol"
)

var log = logging.MustGetLogger("log")

// DatasetLoader fetches the input tables of one job. Injected so the worker
// can run against canned data in tests.
type DatasetLoader func(ctx context.Context, family models.Family, start, end time.Time) (models.Dataset, error)

// AnalyzerWorker takes analysis jobs off the input queue, runs the pipeline
// and publishes the report tables on the output exchange.
type AnalyzerWorker struct {
	input       middleware.MessageMiddleware
	output      middleware.MessageMiddleware
	loadDataset DatasetLoader
}

func NewAnalyzerWorker(input, output middleware.MessageMiddleware, loadDataset DatasetLoader) *AnalyzerWorker {
	return &AnalyzerWorker{
		input:       input,
		output:      output,
		loadDataset: loadDataset,
	}
}

// Start blocks consuming jobs until Close is called.
func (w *AnalyzerWorker) Start() {
	if err := w.input.StartConsuming(w.onJob); err != nil {
		log.Errorf("Failed to start consuming jobs: %v", err)
	}
}

func (w *AnalyzerWorker) Close() {
	if err := w.input.StopConsuming(); err != nil {
		log.Errorf("Error stopping jobs consumer: %v", err)
	}
}

func (w *AnalyzerWorker) onJob(msg middleware.MiddlewareMessage, done chan *middleware.MessageMiddlewareError) {
	job, err := protocol.AnalysisJobFromBytes(msg.Body)
	if err != nil {
		// Malformed jobs are dropped, requeueing them cannot help.
		log.Errorf("Discarding malformed job: %v", err)
		done <- nil
		return
	}

	log.Infof("Job %s: analyzing %s family", job.JobID, job.Family)
	if err := w.runJob(job); err != nil {
		done <- err
		return
	}
	log.Infof("Job %s: report published", job.JobID)
	done <- nil
}

func (w *AnalyzerWorker) runJob(job *protocol.AnalysisJob) *middleware.MessageMiddlewareError {
	start, end, err := job.Window()
	if err != nil {
		log.Errorf("Job %s: %v", job.JobID, err)
		return nil
	}

	family, err := models.ParseFamily(job.Family)
	if err != nil {
		log.Errorf("Job %s: %v", job.JobID, err)
		return nil
	}

	ds, err := w.loadDataset(context.Background(), family, start, end)
	if err != nil {
		// Loader failures are transient, leave the job on the queue.
		log.Errorf("Job %s: could not load dataset: %v", job.JobID, err)
		return &middleware.MessageMiddlewareError{
			Code: middleware.MessageMiddlewareMessageError,
			Msg:  "dataset load failed: " + err.Error(),
		}
	}

	report, err := pipeline.Run(ds, pipeline.Params{
		Family:       job.Family,
		SnapshotEnd:  end,
		Strategy:     job.Strategy,
		Clusters:     job.Clusters,
		Seed:         job.Seed,
		Metric:       job.Metric,
		MinSupport:   job.MinSupport,
		RuleMetric:   job.RuleMetric,
		MinThreshold: job.MinThreshold,
		MarginFactor: job.MarginFactor,
	})
	if err != nil {
		// Bad parameters or an empty population will not improve on retry.
		log.Errorf("Job %s: pipeline failed: %v", job.JobID, err)
		return nil
	}

	for _, table := range protocol.ReportTables(job.JobID, report) {
		data, err := table.Marshal()
		if err != nil {
			log.Errorf("Job %s: could not marshal table %s: %v", job.JobID, table.Name, err)
			return nil
		}
		if sendErr := w.output.Send(data); sendErr != nil {
			return sendErr
		}
	}
	return nil
}
