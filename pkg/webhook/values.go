package webhook

import (
	"context"
	"log/slog"

	"github.com/KIIGIN/bot-constructor/internal/runtime"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// hydrate copies this participant's saved values into the scenario namespace once.
func (o *Orchestrator) hydrate(ctx context.Context, logger *slog.Logger, c *runtime.Context) {
	if o.userData == nil || c.State.HasScenario(c.ScenarioID) || c.State.Loaded[c.ScenarioID] {
		return
	}

	fields, err := o.userData.CollectedFields(ctx, c.ScenarioID)
	if err != nil {
		logger.Error("failed to hydrate saved values", "err", err)
		return
	}

	vars := c.Variables()
	participant := c.State.ParticipantID
	for _, f := range fields {
		for _, v := range f.Values {
			if v.ParticipantID != participant {
				continue
			}
			// Later values win; rows arrive oldest first.
			vars.Fields[f.Variable] = &domain.FieldValue{
				FieldName:  f.Name,
				FieldType:  f.Type,
				FieldValue: v.Value,
				Saved:      true,
			}
		}
	}
	c.State.Loaded[c.ScenarioID] = true
	logger.Debug("saved values hydrated", "fields", len(vars.Fields))
}

// persistValues hands unsaved values to the user-data service and marks them saved.
// Failed writes stay unsaved and are retried on the next event.
func (o *Orchestrator) persistValues(ctx context.Context, logger *slog.Logger, c *runtime.Context, ev domain.Event) {
	if o.userData == nil {
		return
	}
	for _, variable := range c.State.Unsaved(c.ScenarioID) {
		v, _ := c.State.Lookup(c.ScenarioID, variable)
		record := domain.FieldRecord{
			Name:          v.FieldName,
			Type:          v.FieldType,
			Value:         v.FieldValue,
			Variable:      variable,
			ScenarioID:    c.ScenarioID,
			ParticipantID: c.State.ParticipantID,
			Username:      ev.SenderName(),
		}

		err := o.userData.SaveValue(ctx, record)
		if o.metrics != nil {
			o.metrics.ObserveSavedField(err)
		}
		if err != nil {
			logger.Error("failed to save collected value", "variable", variable, "err", err)
			continue
		}
		v.Saved = true

		if o.publisher != nil {
			if err := o.publisher.Publish(ctx, record); err != nil {
				logger.Warn("failed to publish collected value", "variable", variable, "err", err)
			}
		}
	}
}
