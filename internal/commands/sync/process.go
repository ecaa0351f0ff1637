// Package synccmd drives the persistence retry queue and its audit trail
// through go-command handlers.
package synccmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folioforge/go-folio/internal/commands"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const processQueueMessageType = "folio.sync.process"

// Worker is the part of jobs.Worker the handler needs.
type Worker interface {
	Process(ctx context.Context) error
}

// ProcessQueueCommand replays due sync jobs. Rounds repeats the pass, which
// lets one call drain jobs rescheduled within the same tick.
type ProcessQueueCommand struct {
	Rounds int `json:"rounds,omitempty"`
}

func (ProcessQueueCommand) Type() string { return processQueueMessageType }

func (m ProcessQueueCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Rounds, validation.Min(0), validation.Max(100)),
	)
}

// ProcessQueueHandler runs the worker for the requested number of rounds.
type ProcessQueueHandler struct {
	inner *commands.Handler[ProcessQueueCommand]
}

func NewProcessQueueHandler(worker Worker, logger interfaces.Logger, opts ...commands.HandlerOption[ProcessQueueCommand]) *ProcessQueueHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg ProcessQueueCommand) error {
		rounds := msg.Rounds
		if rounds <= 0 {
			rounds = 1
		}
		for i := 0; i < rounds; i++ {
			if err := worker.Process(ctx); err != nil {
				return err
			}
		}
		logging.WithFields(baseLogger, map[string]any{
			"operation": "sync.process",
			"rounds":    rounds,
		}).Info("sync.command.process.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ProcessQueueCommand]{
		commands.WithLogger[ProcessQueueCommand](baseLogger),
		commands.WithOperation[ProcessQueueCommand]("sync.process"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ProcessQueueHandler{
		inner: commands.NewHandler[ProcessQueueCommand](exec, handlerOpts...),
	}
}

func (h *ProcessQueueHandler) Execute(ctx context.Context, msg ProcessQueueCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *ProcessQueueHandler) CLIHandler() any {
	return h
}

func (h *ProcessQueueHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sync", "process"},
		Group:       "sync",
		Description: "Replay pending persistence sync jobs",
	}
}
