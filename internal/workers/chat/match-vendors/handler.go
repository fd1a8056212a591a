// internal/workers/chat/match-vendors/handler.go
package matchvendors

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"partyplnr/internal/chat"
	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/validation"
)

const (
	TaskType = "match-vendors"
)

var (
	ErrNilInput = errors.New("input cannot be nil")

	schema = validation.MustCompile(inputSchema)
)

// Responder is the chat service as seen by the worker.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type Handler struct {
	config     *Config
	responder  Responder
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, responder Responder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		responder:  responder,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func parseInput(variables string) (*Input, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, apperrors.NewInvalidRequestError("parse input: " + err.Error())
	}

	if result := schema.Validate(vars); !result.Valid {
		return nil, apperrors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidRequestError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError(ErrNilInput.Error())
	}

	resp, err := h.responder.Respond(ctx, chat.Request{
		Message:   input.Message,
		SessionID: input.SessionID,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("chat", err)
		}
		return nil, err
	}

	h.logger.Info("vendors matched", map[string]interface{}{
		"sessionId":  input.SessionID,
		"outcome":    resp.Outcome,
		"isFollowUp": resp.IsFollowUp,
	})

	return &Output{
		Reply:      resp.Text,
		IsFollowUp: resp.IsFollowUp,
		Outcome:    resp.Outcome,
		SessionID:  input.SessionID,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
