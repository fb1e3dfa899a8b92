// internal/membership/lookup.go
package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"gymflow/internal/ids"
)

// Lookup finds a member by a user-typed id, ignoring case and surrounding
// whitespace. A miss is an ordinary outcome.
func Lookup(members []Member, rawID string) (Member, bool) {
	key := ids.Normalize(rawID)
	if key == "" {
		return Member{}, false
	}
	return lo.Find(members, func(m Member) bool {
		return ids.Normalize(m.ID) == key
	})
}

// Resolve follows a weak reference from another collection. Dangling ids
// resolve to the NotFound placeholder.
func Resolve(members []Member, id string) (Member, bool) {
	m, ok := lo.Find(members, func(m Member) bool { return m.ID == id })
	if !ok {
		return NotFound(id), false
	}
	return m, true
}

// Filter is a member list selection used by the admin screens.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterOverdue Filter = "overdue"
	FilterPending Filter = "pending"
	FilterActive  Filter = "active"
)

// ParseFilter accepts an empty string as FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterOverdue, FilterPending, FilterActive:
		return f, nil
	default:
		return "", fmt.Errorf("unknown member filter %q", s)
	}
}

// Select keeps the members matching both the filter and the search text.
// Search matches the name case-insensitively or any part of the contact.
func Select(members []Member, filter Filter, search string, now time.Time) []Member {
	search = strings.TrimSpace(search)
	needle := strings.ToLower(search)
	return lo.Filter(members, func(m Member, _ int) bool {
		if search != "" && !strings.Contains(strings.ToLower(m.Name), needle) && !strings.Contains(m.Contact, search) {
			return false
		}
		switch filter {
		case FilterOverdue:
			return m.State == StateActivated && DaysRemaining(m.DueDate, now) < 0
		case FilterPending:
			return m.State == StatePending
		case FilterActive:
			return m.State == StateActivated && DaysRemaining(m.DueDate, now) >= 0
		default:
			return true
		}
	})
}
