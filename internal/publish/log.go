package publish

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/heatlink/internal/datapoint"
	"github.com/muurk/heatlink/internal/logging"
)

// LogForwarder returns a forward function that only logs readings.
// Used by `run --dry-run` to exercise the full protocol workflow
// without a broker.
func LogForwarder() func(ctx context.Context, update datapoint.Update) error {
	return func(_ context.Context, update datapoint.Update) error {
		logging.Info("reading",
			zap.String("bus_address", update.BusAddress),
			zap.Int("info_number", update.InfoNumber),
			zap.String("name", update.Name),
			zap.Float64("value", update.Value),
			zap.String("unit", update.Unit),
		)
		return nil
	}
}
