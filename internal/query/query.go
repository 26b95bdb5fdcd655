// Package query filters and orders ticket collections in memory for
// both the admin (all tickets) and client (own tickets) views.
package query

import (
	"sort"
	"strings"

	"github.com/spec-kit/hosting-portal/internal/domain"
)

// All is the sentinel that disables a status or priority filter.
const All = "all"

// Direction controls sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Options composes the engine's operations: search, status filter and
// priority filter apply as a conjunction, then the sort runs.
type Options struct {
	Search    string
	Status    string
	Priority  string
	SortField string
	SortDir   Direction
}

// Apply runs the full pipeline over tickets.
func Apply(tickets []domain.Ticket, opts Options) []domain.Ticket {
	out := Search(tickets, opts.Search)
	out = FilterByStatus(out, opts.Status)
	out = FilterByPriority(out, opts.Priority)
	if opts.SortField != "" {
		out = SortBy(out, opts.SortField, opts.SortDir)
	}
	return out
}

// Search matches term case-insensitively against subject, description,
// owner display name and owner email. An empty term matches all.
func Search(tickets []domain.Ticket, term string) []domain.Ticket {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if containsFold(t.Subject, term) ||
			containsFold(t.Description, term) ||
			containsFold(t.OwnerName, term) ||
			containsFold(t.OwnerEmail, term) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByStatus keeps tickets with the exact status. The "all"
// sentinel or an empty value disables the filter.
func FilterByStatus(tickets []domain.Ticket, status string) []domain.Ticket {
	if status == "" || status == All {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// FilterByPriority keeps tickets with the exact priority, with the
// same sentinel behavior as FilterByStatus.
func FilterByPriority(tickets []domain.Ticket, priority string) []domain.Ticket {
	if priority == "" || priority == All {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if string(t.Priority) == priority {
			out = append(out, t)
		}
	}
	return out
}

// SortBy orders tickets by a string-valued field. dateOpened compares
// ISO-8601 timestamps lexicographically, which matches chronological
// order. Unknown or non-string fields leave the slice untouched.
func SortBy(tickets []domain.Ticket, field string, dir Direction) []domain.Ticket {
	key := sortKey(field)
	if key == nil {
		return tickets
	}
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(&out[i]), key(&out[j])
		if dir == Descending {
			return a > b
		}
		return a < b
	})
	return out
}

func sortKey(field string) func(*domain.Ticket) string {
	switch field {
	case "dateOpened":
		return func(t *domain.Ticket) string { return t.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z") }
	case "subject":
		return func(t *domain.Ticket) string { return t.Subject }
	case "status":
		return func(t *domain.Ticket) string { return string(t.Status) }
	case "priority":
		return func(t *domain.Ticket) string { return string(t.Priority) }
	case "category":
		return func(t *domain.Ticket) string { return t.Category }
	default:
		return nil
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
