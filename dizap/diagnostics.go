// Package dizap writes [di.Container] events to a [zap.Logger].
package dizap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sectrean/di-engine"
)

// NewDiagnostics returns [di.Diagnostics] that write container events to the logger.
//
// Registrations and resolves are logged at debug level. Failures are logged at error level.
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithDiagnostics(dizap.NewDiagnostics(logger)),
//	)
func NewDiagnostics(logger *zap.Logger) di.Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &diagnostics{logger: logger.Named("di")}
}

type diagnostics struct {
	logger *zap.Logger
}

func (d *diagnostics) Registered(c *di.Container, reg *di.Registration) {
	d.logger.Debug("registered",
		zap.Stringer("container", c),
		zap.Stringer("contract", reg.Contract()),
		zap.Stringer("category", reg.Category()),
		zap.String("lifetime", fmt.Sprint(reg.LifetimeManager())),
	)
}

func (d *diagnostics) Resolved(_ context.Context, c *di.Container, contract di.Contract, elapsed time.Duration) {
	d.logger.Debug("resolved",
		zap.Stringer("container", c),
		zap.Stringer("contract", contract),
		zap.Duration("elapsed", elapsed),
	)
}

func (d *diagnostics) ResolveFailed(_ context.Context, c *di.Container, contract di.Contract, err error) {
	d.logger.Error("resolve failed",
		zap.Stringer("container", c),
		zap.Stringer("contract", contract),
		zap.Error(err),
	)
}

func (d *diagnostics) ContainerClosed(c *di.Container, err error) {
	if err != nil {
		d.logger.Error("container closed with errors",
			zap.Stringer("container", c),
			zap.Error(err),
		)
		return
	}

	d.logger.Debug("container closed", zap.Stringer("container", c))
}

var _ di.Diagnostics = (*diagnostics)(nil)
