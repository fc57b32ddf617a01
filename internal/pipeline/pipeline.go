package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. Refusing the file is not an error: the step
	// calls job.Reject and returns nil. Errors are infrastructure
	// failures such as a failed disk write.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// FinalStep is implemented by steps that must run even after the job was
// rejected.
type FinalStep interface {
	Step
	Final() bool
}

func isFinal(s Step) bool {
	f, ok := s.(FinalStep)
	return ok && f.Final()
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order.
//
// After a rejection or a step error only final steps run. A step error
// also rejects the job, with reason canceled when ctx is done and
// io_failure otherwise. Execute returns the first step error.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if !job.Rejected() && ctx.Err() != nil {
			p.logger.Warn("pipeline canceled", "step", step.Name(), "source", job.Source, "error", ctx.Err())
			job.Reject(sanitizer.Reject(sanitizer.ReasonCanceled, step.Name(), ctx.Err()))
			if job.Err == nil {
				job.Err = ctx.Err()
			}
		}
		if job.Rejected() && !isFinal(step) {
			continue
		}

		p.logger.Debug("executing step", "step", step.Name(), "source", job.Source)
		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "source", job.Source, "error", err)
			reason := sanitizer.ReasonIOFailure
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reason = sanitizer.ReasonCanceled
			}
			job.Reject(sanitizer.Reject(reason, step.Name(), err))
			if job.Err == nil {
				job.Err = err
			}
		}
		job.Performed = append(job.Performed, step.Name())
	}
	return job.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
