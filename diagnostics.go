package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Diagnostics receives events from a [Container].
//
// Implementations must be safe for concurrent use. Use [WithDiagnostics] to set it.
type Diagnostics interface {
	// Registered is called after a registration is added to the Container.
	Registered(c *Container, reg *Registration)
	// Resolved is called after a top-level resolve succeeds.
	Resolved(ctx context.Context, c *Container, contract Contract, elapsed time.Duration)
	// ResolveFailed is called after a top-level resolve fails.
	ResolveFailed(ctx context.Context, c *Container, contract Contract, err error)
	// ContainerClosed is called after the Container is closed, with the error returned from Close.
	ContainerClosed(c *Container, err error)
}

// NopDiagnostics ignores all events.
type NopDiagnostics struct{}

func (NopDiagnostics) Registered(*Container, *Registration)                          {}
func (NopDiagnostics) Resolved(context.Context, *Container, Contract, time.Duration) {}
func (NopDiagnostics) ResolveFailed(context.Context, *Container, Contract, error)    {}
func (NopDiagnostics) ContainerClosed(*Container, error)                             {}

var _ Diagnostics = NopDiagnostics{}

// SlogDiagnostics returns [Diagnostics] that write events to the logger.
//
// Registrations and resolves are logged at debug level. Failures are logged at error level.
func SlogDiagnostics(logger *slog.Logger) Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}

	return slogDiagnostics{logger: logger}
}

type slogDiagnostics struct {
	logger *slog.Logger
}

func (d slogDiagnostics) Registered(c *Container, reg *Registration) {
	d.logger.Debug("registered",
		slog.String("container", c.String()),
		slog.String("contract", reg.Contract().String()),
		slog.String("category", reg.Category().String()),
		slog.String("lifetime", fmt.Sprint(reg.LifetimeManager())),
	)
}

func (d slogDiagnostics) Resolved(ctx context.Context, c *Container, contract Contract, elapsed time.Duration) {
	d.logger.DebugContext(ctx, "resolved",
		slog.String("container", c.String()),
		slog.String("contract", contract.String()),
		slog.Duration("elapsed", elapsed),
	)
}

func (d slogDiagnostics) ResolveFailed(ctx context.Context, c *Container, contract Contract, err error) {
	d.logger.ErrorContext(ctx, "resolve failed",
		slog.String("container", c.String()),
		slog.String("contract", contract.String()),
		slog.Any("error", err),
	)
}

func (d slogDiagnostics) ContainerClosed(c *Container, err error) {
	if err != nil {
		d.logger.Error("container closed with errors",
			slog.String("container", c.String()),
			slog.Any("error", err),
		)
		return
	}

	d.logger.Debug("container closed", slog.String("container", c.String()))
}
