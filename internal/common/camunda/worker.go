package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/metrics"
)

// JobHandler processes one job. Handlers report failures to the broker
// themselves; the returned error is only logged and counted.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType on client.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandler,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			start := time.Now()
			err := handler.Handle(client, job)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.WorkerJobsFailed.WithLabelValues(taskType, "handler_error").Inc()
				log.Error("Handler returned error", map[string]interface{}{
					"error":  err,
					"jobKey": job.Key,
				})
				return
			}
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}).
		MaxJobsActive(maxJobsActive)
	if timeout > 0 {
		builder = builder.Timeout(timeout)
	}

	return &CamundaWorker{
		worker:   builder.Open(),
		logger:   log,
		taskType: taskType,
	}
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", nil)
}

func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
