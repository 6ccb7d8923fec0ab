package alarmService

import (
	"cmp"
	"slices"
	"time"

	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
}

// ParseTime accepts the timestamp layouts the backend emits. Zone-less values are UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var eventOrder = map[types.TimelineEventType]int{
	types.TimelineEvent_Occurred:     0,
	types.TimelineEvent_Acknowledged: 1,
	types.TimelineEvent_Cleared:      2,
}

type timedEvent struct {
	at    time.Time
	event *types.TimelineEvent
}

// BuildTimeline expands occurrences into occurred, acknowledged and cleared events ordered by
// time. Events at the same instant are ordered by lifecycle stage, then input order. Events whose
// timestamp cannot be parsed are dropped.
func BuildTimeline(occurrences []*types.AlarmOccurrence) []*types.TimelineEvent {
	events := make([]timedEvent, 0, len(occurrences))
	add := func(occ *types.AlarmOccurrence, kind types.TimelineEventType, at string, userId int, comment string) {
		if at == "" {
			return
		}
		t, ok := ParseTime(at)
		if !ok {
			return
		}
		events = append(events, timedEvent{at: t, event: &types.TimelineEvent{
			OccurrenceId: occ.Id,
			Type:         kind,
			Time:         at,
			Severity:     occ.Severity,
			Message:      occ.AlarmMessage,
			UserId:       userId,
			Comment:      comment,
		}})
	}

	for _, occ := range occurrences {
		if occ == nil {
			continue
		}
		add(occ, types.TimelineEvent_Occurred, occ.OccurrenceTime, 0, "")
		add(occ, types.TimelineEvent_Acknowledged, occ.AcknowledgedTime, occ.AcknowledgedBy, occ.AcknowledgeComment)
		add(occ, types.TimelineEvent_Cleared, occ.ClearedTime, occ.ClearedBy, occ.ClearComment)
	}

	slices.SortStableFunc(events, func(a, b timedEvent) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return cmp.Compare(eventOrder[a.event.Type], eventOrder[b.event.Type])
	})
	return lo.Map(events, func(e timedEvent, _ int) *types.TimelineEvent {
		return e.event
	})
}
