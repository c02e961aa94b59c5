package forme

import "time"

// EffectKind is the closed set of effect tags the reducer may return
// (§4.1).
type EffectKind uint8

const (
	EffectEmitWidget EffectKind = iota
	EffectSchedule
	EffectRequestRender
	EffectCancelScheduled
)

// ScheduleOpKind names which scheduler operation an EffectSchedule
// carries.
type ScheduleOpKind uint8

const (
	ScheduleEmitNow ScheduleOpKind = iota
	ScheduleEmitAfter
	ScheduleDebounce
	ScheduleThrottle
)

// Effect is a value returned by the reducer representing deferred work;
// the runtime executes each one against the scheduler or widget-event
// handler (§4.1).
type Effect struct {
	Kind EffectKind

	// EffectEmitWidget
	Widget WidgetEvent

	// EffectSchedule
	ScheduleOp    ScheduleOpKind
	ScheduleKey   string
	ScheduleEvent SchedulerEvent
	Delay         time.Duration

	// EffectCancelScheduled
	CancelKey string
}

// clearErrorKey builds the scheduler key used for the debounce-clear of
// an inline validation error on a node (§4.1/§4.6: "Debounce(clear-error,
// default 2s)").
func clearErrorKey(id NodeId) string { return "clear-error:" + string(id) }

// DefaultErrorDecay is the default debounce delay for clearing an inline
// validation error (§4.1).
const DefaultErrorDecay = 2 * time.Second
