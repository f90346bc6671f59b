// Package feed fetches, filters and day-buckets a group's activity feed.
//
// The pipeline is Fetcher -> ApplyFilters -> GroupByDate. Items are immutable
// values produced fresh by every fetch; the filter and grouping stages are
// pure functions that never mutate their input. Session wraps the pipeline in
// an idle/loading/ready/error state machine with last-request-wins semantics.
package feed

import "time"

// Kind tags which payload of an Item is populated.
type Kind string

const (
	KindMood Kind = "mood"
	KindTask Kind = "task"
)

// Mood tags.
const (
	MoodHappy    = "happy"
	MoodExcited  = "excited"
	MoodSad      = "sad"
	MoodAngry    = "angry"
	MoodNervous  = "nervous"
	MoodPeaceful = "peaceful"
)

// Body-feeling tags.
const (
	FeelingEnergized = "energized"
	FeelingSore      = "sore"
	FeelingTired     = "tired"
	FeelingSick      = "sick"
	FeelingRelaxed   = "relaxed"
	FeelingTense     = "tense"
)

// Task status and priority values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	knownMoods      = set(MoodHappy, MoodExcited, MoodSad, MoodAngry, MoodNervous, MoodPeaceful)
	knownFeelings   = set(FeelingEnergized, FeelingSore, FeelingTired, FeelingSick, FeelingRelaxed, FeelingTense)
	knownStatuses   = set(StatusPending, StatusInProgress, StatusDone)
	knownPriorities = set(PriorityLow, PriorityMedium, PriorityHigh)
)

// Actor is the user who generated an item.
type Actor struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// MoodPayload lists the tags of a check-in. Either list may be empty.
type MoodPayload struct {
	Moods    []string
	Feelings []string
}

// TaskPayload is the state of a task at the time of the event.
type TaskPayload struct {
	Title    string
	Status   string
	Priority string
}

// Item is a single feed entry. Exactly one of Mood and Task is non-nil and
// Kind says which.
type Item struct {
	ID        string
	Kind      Kind
	Timestamp time.Time
	Actor     Actor
	Mood      *MoodPayload
	Task      *TaskPayload
}

// DateGroup is a run of items sharing a calendar day. Never empty.
type DateGroup struct {
	Label string
	Items []Item
}

// TimeFilter bounds items by how recently they happened.
type TimeFilter string

const (
	TimeAll   TimeFilter = "all"
	TimeToday TimeFilter = "today"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
)

// ActivityFilter restricts items to one Kind.
type ActivityFilter string

const (
	ActivityAll  ActivityFilter = "all"
	ActivityMood ActivityFilter = "mood"
	ActivityTask ActivityFilter = "task"
)

// ActorFilter restricts items to the viewer's own activity.
type ActorFilter string

const (
	ActorAll  ActorFilter = "all"
	ActorSelf ActorFilter = "self"
)

// Filters is the user-selected filter state. The zero value behaves like
// DefaultFilters.
type Filters struct {
	Time     TimeFilter
	Activity ActivityFilter
	Actor    ActorFilter
}

// DefaultFilters returns the filter state a freshly mounted view starts with.
func DefaultFilters() Filters {
	return Filters{Time: TimeAll, Activity: ActivityAll, Actor: ActorAll}
}

// Normalized replaces empty or unknown selections with "all".
func (f Filters) Normalized() Filters {
	switch f.Time {
	case TimeToday, TimeWeek, TimeMonth:
	default:
		f.Time = TimeAll
	}
	switch f.Activity {
	case ActivityMood, ActivityTask:
	default:
		f.Activity = ActivityAll
	}
	if f.Actor != ActorSelf {
		f.Actor = ActorAll
	}
	return f
}

// ParseTimeFilter maps user input to a TimeFilter, defaulting to all.
func ParseTimeFilter(s string) TimeFilter {
	return Filters{Time: TimeFilter(s)}.Normalized().Time
}

// ParseActivityFilter maps user input to an ActivityFilter, defaulting to all.
func ParseActivityFilter(s string) ActivityFilter {
	return Filters{Activity: ActivityFilter(s)}.Normalized().Activity
}

// ParseActorFilter maps user input to an ActorFilter, defaulting to all.
func ParseActorFilter(s string) ActorFilter {
	return Filters{Actor: ActorFilter(s)}.Normalized().Actor
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
