package feed

import "time"

// Viewer is who is looking at the feed and when. Now's location is the
// viewer's local time zone and drives every calendar computation.
type Viewer struct {
	UserID string
	Now    time.Time
}

func (v Viewer) now() time.Time {
	if v.Now.IsZero() {
		return time.Now()
	}
	return v.Now
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Since returns the inclusive lower bound of tf as seen at now, or the zero
// time when tf does not bound the past. Weeks start on Sunday.
func Since(tf TimeFilter, now time.Time) time.Time {
	day := StartOfDay(now)
	switch tf {
	case TimeToday:
		return day
	case TimeWeek:
		return day.AddDate(0, 0, -int(now.Weekday()))
	case TimeMonth:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// ApplyFilters keeps the items that pass every active predicate. The result
// is a new slice in input order; items is never modified.
func ApplyFilters(items []Item, f Filters, v Viewer) []Item {
	f = f.Normalized()
	now := v.now()
	since := Since(f.Time, now)

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !matchTime(item.Timestamp, f.Time, since, now) {
			continue
		}
		if f.Activity != ActivityAll && string(item.Kind) != string(f.Activity) {
			continue
		}
		if f.Actor == ActorSelf && (v.UserID == "" || item.Actor.ID != v.UserID) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchTime(ts time.Time, tf TimeFilter, since, now time.Time) bool {
	switch tf {
	case TimeAll:
		return true
	case TimeToday:
		return !ts.Before(since) && !ts.After(now)
	default:
		return !ts.Before(since)
	}
}
