package feed

import (
	"sort"
	"time"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"

	dayLabelLayout      = "Monday, January 2"
	pastYearLabelLayout = "Monday, January 2, 2006"
)

type bucket struct {
	label  string
	rank   int
	latest time.Time
	items  []Item
}

// GroupByDate buckets items by their DayLabel relative to now. Groups
// come out as Today, Yesterday, then by most recent item descending; ties keep
// the order in which each day was first seen. Items keep input order within
// their group.
func GroupByDate(items []Item, now time.Time) []DateGroup {
	if len(items) == 0 {
		return []DateGroup{}
	}
	if now.IsZero() {
		now = time.Now()
	}
	loc := now.Location()
	today := StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	index := make(map[string]int)
	var buckets []*bucket
	for _, item := range items {
		day := StartOfDay(item.Timestamp.In(loc))
		label := DayLabel(day, now)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, &bucket{label: label, rank: dayRank(day, today, yesterday)})
		}
		b := buckets[i]
		b.items = append(b.items, item)
		if b.latest.IsZero() || item.Timestamp.After(b.latest) {
			b.latest = item.Timestamp
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].rank != buckets[j].rank {
			return buckets[i].rank < buckets[j].rank
		}
		return buckets[i].latest.After(buckets[j].latest)
	})

	groups := make([]DateGroup, 0, len(buckets))
	for _, b := range buckets {
		groups = append(groups, DateGroup{Label: b.label, Items: b.items})
	}
	return groups
}

// DayLabel renders the display label for the calendar day containing t.
// Days outside the current year carry the year so every label names exactly
// one day.
func DayLabel(t, now time.Time) string {
	today := StartOfDay(now)
	day := StartOfDay(t.In(now.Location()))
	switch {
	case day.Equal(today):
		return LabelToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return LabelYesterday
	case day.Year() != today.Year():
		return day.Format(pastYearLabelLayout)
	default:
		return day.Format(dayLabelLayout)
	}
}

func dayRank(day, today, yesterday time.Time) int {
	switch {
	case day.Equal(today):
		return 0
	case day.Equal(yesterday):
		return 1
	default:
		return 2
	}
}
