package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the job error handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports job failures back to the workflow engine. Retryable
// infrastructure errors fail the job with retries left; everything else is
// thrown as a BPMN error so the process can route on the code.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError normalizes err, logs it and sends the matching command.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"details":          stdErr.Details,
		"retries":          bpmnErr.Retries,
		"workflowInstance": job.ProcessInstanceKey,
	})

	vars := variablesJSON(bpmnErr)

	if bpmnErr.Retries > 0 && job.Retries > 0 {
		retries := bpmnErr.Retries
		if int(job.Retries) < retries {
			retries = int(job.Retries)
		}
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(int32(retries - 1)).
			ErrorMessage(bpmnErr.Message)
		if vars != "" {
			if withVars, err := cmd.VariablesFromString(vars); err == nil {
				_, _ = withVars.Send(ctx)
				return
			}
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)
	if vars != "" {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func variablesJSON(bpmnErr *BPMNError) string {
	raw, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return ""
	}
	return string(raw)
}
