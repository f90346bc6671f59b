package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+2", 2*60*60)

// 2024-06-01 is a Saturday.
func testNow() time.Time {
	return time.Date(2024, 6, 1, 15, 30, 0, 0, testZone)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 5, day, hour, minute, 0, 0, testZone)
}

func june(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, testZone)
}

func moodItem(id string, ts time.Time, actor string, moods ...string) Item {
	return Item{
		ID:        id,
		Kind:      KindMood,
		Timestamp: ts,
		Actor:     Actor{ID: actor, DisplayName: actor},
		Mood:      &MoodPayload{Moods: moods, Feelings: []string{}},
	}
}

func taskItem(id string, ts time.Time, actor, status string) Item {
	return Item{
		ID:        id,
		Kind:      KindTask,
		Timestamp: ts,
		Actor:     Actor{ID: actor, DisplayName: actor},
		Task:      &TaskPayload{Title: "Pick up prescription", Status: status, Priority: PriorityMedium},
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sampleItems() []Item {
	return []Item{
		moodItem("m1", june(1, 9, 0), "ana", MoodHappy),
		taskItem("t1", june(1, 10, 0), "ben", StatusDone),
		moodItem("m2", at(30, 8, 0), "ana", MoodNervous),
		taskItem("t2", at(26, 0, 0), "ana", StatusPending),
		moodItem("m3", at(25, 23, 59), "ben", MoodSad),
		taskItem("t3", at(1, 0, 0), "ben", StatusInProgress),
		moodItem("m4", time.Date(2024, 4, 30, 23, 0, 0, 0, testZone), "ana"),
	}
}

func TestSince(t *testing.T) {
	now := testNow()

	assert.True(t, Since(TimeAll, now).IsZero())
	assert.Equal(t, june(1, 0, 0), Since(TimeToday, now))
	assert.Equal(t, at(26, 0, 0), Since(TimeWeek, now), "week starts on the preceding Sunday")
	assert.Equal(t, at(1, 0, 0), Since(TimeMonth, at(31, 23, 59)))
	assert.Equal(t, june(1, 0, 0), Since(TimeMonth, now))

	sunday := time.Date(2024, 6, 2, 8, 0, 0, 0, testZone)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, testZone), Since(TimeWeek, sunday))
}

func TestApplyFilters_TodayBoundary(t *testing.T) {
	now := testNow()
	start := StartOfDay(now)
	items := []Item{
		moodItem("at-start", start, "ana"),
		moodItem("before-start", start.Add(-time.Millisecond), "ana"),
		moodItem("now", now, "ana"),
		moodItem("future", now.Add(time.Minute), "ana"),
	}

	got := ApplyFilters(items, Filters{Time: TimeToday}, Viewer{Now: now})

	assert.Equal(t, []string{"at-start", "now"}, ids(got))
}

func TestApplyFilters_TimeWindows(t *testing.T) {
	now := testNow()
	viewer := Viewer{UserID: "ana", Now: now}

	tests := []struct {
		name   string
		filter TimeFilter
		want   []string
	}{
		{"all", TimeAll, []string{"m1", "t1", "m2", "t2", "m3", "t3", "m4"}},
		{"today", TimeToday, []string{"m1", "t1"}},
		{"week", TimeWeek, []string{"m1", "t1", "m2", "t2"}},
		{"month", TimeMonth, []string{"m1", "t1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(sampleItems(), Filters{Time: tt.filter}, viewer)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	mid := time.Date(2024, 5, 20, 12, 0, 0, 0, testZone)
	got := ApplyFilters(sampleItems(), Filters{Time: TimeMonth}, Viewer{Now: mid})
	assert.Equal(t, []string{"m1", "t1", "m2", "t2", "m3", "t3"}, ids(got), "month bound is the first of the month, upper bound open")
}

func TestApplyFilters_ActivityAndActor(t *testing.T) {
	viewer := Viewer{UserID: "ana", Now: testNow()}

	moods := ApplyFilters(sampleItems(), Filters{Activity: ActivityMood}, viewer)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids(moods))

	tasks := ApplyFilters(sampleItems(), Filters{Activity: ActivityTask}, viewer)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(tasks))

	mine := ApplyFilters(sampleItems(), Filters{Actor: ActorSelf}, viewer)
	assert.Equal(t, []string{"m1", "m2", "t2", "m4"}, ids(mine))

	combined := ApplyFilters(sampleItems(), Filters{Time: TimeWeek, Activity: ActivityTask, Actor: ActorSelf}, viewer)
	assert.Equal(t, []string{"t2"}, ids(combined))

	anonymous := ApplyFilters(sampleItems(), Filters{Actor: ActorSelf}, Viewer{Now: testNow()})
	assert.Empty(t, anonymous)
}

func TestApplyFilters_Idempotent(t *testing.T) {
	viewer := Viewer{UserID: "ben", Now: testNow()}
	for _, tf := range []TimeFilter{TimeAll, TimeToday, TimeWeek, TimeMonth} {
		for _, af := range []ActivityFilter{ActivityAll, ActivityMood, ActivityTask} {
			for _, actor := range []ActorFilter{ActorAll, ActorSelf} {
				f := Filters{Time: tf, Activity: af, Actor: actor}
				once := ApplyFilters(sampleItems(), f, viewer)
				twice := ApplyFilters(once, f, viewer)
				assert.Equal(t, once, twice, "filters %+v", f)
			}
		}
	}
}

func TestApplyFilters_PreservesOrderAndInput(t *testing.T) {
	items := sampleItems()
	// Shuffle relative to chronology so ordering is not accidentally sorted.
	items[0], items[4] = items[4], items[0]
	before := ids(items)

	got := ApplyFilters(items, Filters{Activity: ActivityMood}, Viewer{Now: testNow()})

	assert.Equal(t, before, ids(items), "input must not be modified")
	pos := make(map[string]int, len(items))
	for i, id := range before {
		pos[id] = i
	}
	for i := 1; i < len(got); i++ {
		assert.Less(t, pos[got[i-1].ID], pos[got[i].ID])
	}
}

func TestApplyFilters_Empty(t *testing.T) {
	got := ApplyFilters(nil, Filters{Time: TimeToday, Activity: ActivityMood, Actor: ActorSelf}, Viewer{UserID: "ana", Now: testNow()})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilters_Normalized(t *testing.T) {
	assert.Equal(t, DefaultFilters(), Filters{}.Normalized())
	assert.Equal(t, DefaultFilters(), Filters{Time: "year", Activity: "photo", Actor: "others"}.Normalized())
	assert.Equal(t, TimeWeek, ParseTimeFilter("week"))
	assert.Equal(t, ActivityTask, ParseActivityFilter("task"))
	assert.Equal(t, ActorSelf, ParseActorFilter("self"))
	assert.Equal(t, ActorAll, ParseActorFilter(""))
}
