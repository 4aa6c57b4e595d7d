package control

import (
	"context"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// DeviceRelay is the slice of the relay client the orchestrator needs.
type DeviceRelay interface {
	SendCommand(ctx context.Context, actuator string, state bool, pwm *int) error
	SyncThresholds(ctx context.Context, set thresholds.Set) error
	ResumeAuto(ctx context.Context) error
}

// UpdateResult reports the outcome of a threshold update. The durable write
// always succeeded when a result is returned; Synced tells the caller
// whether the edge controller has the new values yet.
type UpdateResult struct {
	Set     thresholds.Set
	Synced  bool
	SyncErr error
}

// Orchestrator sequences operator commands across store, relay, and bus.
type Orchestrator struct {
	store    *thresholds.Store
	relay    DeviceRelay
	bus      bus.Bus
	activity activity.Repository
	logger   *logging.Logger
}

// NewOrchestrator wires the command paths together.
func NewOrchestrator(store *thresholds.Store, relay DeviceRelay, b bus.Bus,
	act activity.Repository, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		relay:    relay,
		bus:      b,
		activity: act,
		logger:   logger,
	}
}

// UpdateThresholds applies a partial threshold update.
//
// Durable phase: apply and persist through the store (the store mutex covers
// only this phase). Any failure here aborts the whole operation. Relay
// phase: push the full set to the controller; failure is non-fatal and
// surfaces as Synced=false with the classified error. Notify phase: always
// broadcast threshold_update with the durable values, so viewers converge
// even when the device is offline.
func (o *Orchestrator) UpdateThresholds(ctx context.Context, actor *auth.User, changes map[string]float64) (*UpdateResult, error) {
	set, err := o.store.Update(ctx, actor.ID, changes)
	if err != nil {
		return nil, err
	}

	o.record(ctx, actor, activity.ActionThresholdUpdate, map[string]any{
		"changes": changes,
	})

	result := &UpdateResult{Set: set, Synced: true}
	if err := o.relay.SyncThresholds(ctx, set); err != nil {
		result.Synced = false
		result.SyncErr = err
		o.logger.Warn("threshold sync pending", "error", err)
	} else {
		now := time.Now().UTC()
		if err := o.store.MarkSynced(ctx, now); err != nil {
			o.logger.Error("recording threshold sync failed", "error", err)
		} else {
			result.Set.LastSyncedAt = &now
		}
	}

	o.bus.Publish(bus.TopicThresholdUpdate, result.Set)

	return result, nil
}

// ManualControl relays a manual actuator command. There is no durable
// device state to fall back on, so a relay failure fails the whole
// operation; nothing is recorded or broadcast for a command the device
// never received.
func (o *Orchestrator) ManualControl(ctx context.Context, actor *auth.User, cmd Command) (*Command, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	if err := o.relay.SendCommand(ctx, cmd.Actuator, cmd.State, cmd.Pwm); err != nil {
		return nil, err
	}

	detail := map[string]any{
		"actuator": cmd.Actuator,
		"state":    cmd.State,
	}
	if cmd.Pwm != nil {
		detail["pwm"] = *cmd.Pwm
	}
	o.record(ctx, actor, activity.ActionManualControl, detail)

	o.bus.Publish(bus.TopicManualControl, map[string]any{
		"actuator": cmd.Actuator,
		"state":    cmd.State,
		"pwm":      cmd.Pwm,
		"by":       actor.Username,
	})

	return &cmd, nil
}

// ResumeAuto tells the controller to resume its automation loop. Like
// ManualControl, relay failure is fatal end to end.
func (o *Orchestrator) ResumeAuto(ctx context.Context, actor *auth.User) error {
	if err := o.relay.ResumeAuto(ctx); err != nil {
		return err
	}

	o.record(ctx, actor, activity.ActionAutoModeResumed, nil)

	o.bus.Publish(bus.TopicAutoModeResumed, map[string]any{
		"by": actor.Username,
	})

	return nil
}

// record appends to the activity trail. Trail failures are logged, never
// fatal to the command that triggered them.
func (o *Orchestrator) record(ctx context.Context, actor *auth.User, action activity.Action, detail map[string]any) {
	rec := &activity.Record{
		ActorID:   actor.ID,
		ActorName: actor.Username,
		Action:    action,
		Detail:    detail,
	}
	if err := o.activity.Append(ctx, rec); err != nil {
		o.logger.Error("activity record append failed", "action", action, "error", err)
	}
}
