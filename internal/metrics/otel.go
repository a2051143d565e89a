package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// ErrNilMeter is returned when no meter is supplied to [RegisterOTel].
var ErrNilMeter = errors.New("nil meter")

// RegisterOTel registers every counter in set as an observable counter on
// the meter. The returned registration stops the export when unregistered.
func RegisterOTel(meter metric.Meter, set *Set) (metric.Registration, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	instruments := make([]metric.Int64ObservableCounter, len(CounterDefs))
	observables := make([]metric.Observable, 0, len(CounterDefs))
	for i, def := range CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		instruments[i] = ins
		observables = append(observables, ins)
	}

	return meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		snap := set.Snapshot()
		for i, def := range CounterDefs {
			obs.ObserveInt64(instruments[i], int64(snap[def.ID]))
		}
		return nil
	}, observables...)
}
