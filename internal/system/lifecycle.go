package system

import (
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/core/event"
	"github.com/swarmsim/racersim/internal/space"
)

// LifecycleWatcher reacts to entity lifecycle events delivered by
// EventSystem. With removeDepleted set, a robot whose battery ran dry is
// queued for removal and destroyed by CleanupSystem in the same tick.
type LifecycleWatcher struct {
	space          *space.Space
	log            *zap.Logger
	removeDepleted bool

	added    int
	removed  int
	depleted []string
}

// WatchLifecycle subscribes a watcher to the space's event bus.
func WatchLifecycle(s *space.Space, log *zap.Logger, removeDepleted bool) *LifecycleWatcher {
	w := &LifecycleWatcher{space: s, log: log.Named("lifecycle"), removeDepleted: removeDepleted}
	bus := s.Env().Bus
	event.Subscribe(bus, w.onAdded)
	event.Subscribe(bus, w.onRemoved)
	event.Subscribe(bus, w.onDepleted)
	return w
}

func (w *LifecycleWatcher) onAdded(ev event.EntityAdded) {
	w.added++
	w.log.Debug("entity added", zap.String("entity", ev.ID), zap.String("type", ev.Type))
}

func (w *LifecycleWatcher) onRemoved(ev event.EntityRemoved) {
	w.removed++
	w.log.Info("entity removed", zap.String("entity", ev.ID))
}

func (w *LifecycleWatcher) onDepleted(ev event.BatteryDepleted) {
	w.depleted = append(w.depleted, ev.ID)
	w.log.Warn("battery depleted", zap.String("entity", ev.ID), zap.Uint64("tick", ev.Tick))
	if w.removeDepleted {
		w.space.MarkForRemoval(ev.ID)
	}
}

// Added returns how many EntityAdded events were delivered.
func (w *LifecycleWatcher) Added() int { return w.added }

// Removed returns how many EntityRemoved events were delivered.
func (w *LifecycleWatcher) Removed() int { return w.removed }

// Depleted returns the ids of depleted entities in delivery order.
func (w *LifecycleWatcher) Depleted() []string {
	return append([]string(nil), w.depleted...)
}
