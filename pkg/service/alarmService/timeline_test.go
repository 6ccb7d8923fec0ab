package alarmService

import (
	"testing"

	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildTimeline(t *testing.T) {
	t.Run("Events are ordered chronologically", func(t *testing.T) {
		occurrences := []*types.AlarmOccurrence{
			{
				Id:                 1,
				Severity:           "high",
				AlarmMessage:       "Overheat",
				OccurrenceTime:     "2025-07-20T08:00:00Z",
				AcknowledgedTime:   "2025-07-20T08:30:00Z",
				AcknowledgedBy:     3,
				AcknowledgeComment: "checking",
				ClearedTime:        "2025-07-20T10:00:00Z",
				ClearedBy:          3,
			},
			{
				Id:             2,
				Severity:       "low",
				OccurrenceTime: "2025-07-20 09:00:00",
			},
			nil,
		}

		events := BuildTimeline(occurrences)
		require.Len(t, events, 4)

		assert.Equal(t, types.TimelineEvent_Occurred, events[0].Type)
		assert.Equal(t, 1, events[0].OccurrenceId)
		assert.Equal(t, types.TimelineEvent_Acknowledged, events[1].Type)
		assert.Equal(t, 3, events[1].UserId)
		assert.Equal(t, "checking", events[1].Comment)
		assert.Equal(t, 2, events[2].OccurrenceId)
		assert.Equal(t, types.TimelineEvent_Cleared, events[3].Type)
	})
	t.Run("Same instant follows the lifecycle", func(t *testing.T) {
		events := BuildTimeline([]*types.AlarmOccurrence{{
			Id:               1,
			OccurrenceTime:   "2025-07-20T08:00:00Z",
			AcknowledgedTime: "2025-07-20T08:00:00Z",
			ClearedTime:      "2025-07-20T08:00:00Z",
		}})
		require.Len(t, events, 3)
		assert.Equal(t, types.TimelineEvent_Occurred, events[0].Type)
		assert.Equal(t, types.TimelineEvent_Acknowledged, events[1].Type)
		assert.Equal(t, types.TimelineEvent_Cleared, events[2].Type)
	})
	t.Run("Unparsable timestamps are dropped", func(t *testing.T) {
		events := BuildTimeline([]*types.AlarmOccurrence{{Id: 1, OccurrenceTime: "yesterday"}})
		assert.Empty(t, events)
	})
	t.Run("ParseTime layouts", func(t *testing.T) {
		for _, s := range []string{"2025-07-20T08:00:00Z", "2025-07-20T08:00:00.123+02:00", "2025-07-20 08:00:00", "2025-07-20T08:00:00"} {
			_, ok := ParseTime(s)
			assert.True(t, ok, s)
		}
	})
}
