package usecase

import (
	"context"
	"fmt"

	"NQFlow/pkg/queue"
)

// PipelineJobType is the queue message type for pipeline runs.
const PipelineJobType = "pipeline_run"

// PipelineJobPayload is the enqueued run request.
type PipelineJobPayload struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Symbols []string `json:"symbols,omitempty"`
}

// PipelineJob executes queued pipeline runs. Runs are idempotent, so the
// queue's retry policy can safely re-execute a failed range.
type PipelineJob struct {
	uc *PipelineUseCase
}

func NewPipelineJob(uc *PipelineUseCase) *PipelineJob {
	return &PipelineJob{uc: uc}
}

func (j *PipelineJob) Name() string { return "pipeline-run" }

func (j *PipelineJob) Type() string { return PipelineJobType }

func (j *PipelineJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[PipelineJobPayload](payload)
	if err != nil {
		return fmt.Errorf("pipeline job payload: %w", err)
	}
	_, err = j.uc.Run(ctx, RunParams{From: p.From, To: p.To, Symbols: p.Symbols})
	return err
}

var _ queue.Job = (*PipelineJob)(nil)
