package domain

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProblemPriority string

const (
	PriorityLow    ProblemPriority = "Low"
	PriorityMedium ProblemPriority = "Medium"
	PriorityHigh   ProblemPriority = "High"
)

type ProblemStatus string

const (
	StatusReported   ProblemStatus = "Reported"
	StatusInProgress ProblemStatus = "In Progress"
	StatusResolved   ProblemStatus = "Resolved"
	StatusClosed     ProblemStatus = "Closed"
)

// FilterAll matches every status or priority in a board filter.
const FilterAll = "all"

// ParseProblemStatus accepts display names and their snake/kebab variants in any case.
func ParseProblemStatus(raw string) (ProblemStatus, error) {
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case "reported":
		return StatusReported, nil
	case "in progress", "inprogress":
		return StatusInProgress, nil
	case "resolved":
		return StatusResolved, nil
	case "closed":
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
}

func ParseProblemPriority(raw string) (ProblemPriority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, raw)
	}
}

// Problem is a reported facility issue.
type Problem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Priority    ProblemPriority `json:"priority"`
	Status      ProblemStatus   `json:"status"`
	ReportedAt  time.Time       `json:"reportedAt"`
}

func (p Problem) resolvedOrClosed() bool {
	return p.Status == StatusResolved || p.Status == StatusClosed
}

// ProblemFilter selects tickets on the board. Empty Status or Priority means FilterAll.
type ProblemFilter struct {
	SearchTerm string
	Status     string
	Priority   string
}

// ProblemBoard holds the tickets an admin tracks in one client session, in report order.
// It is not safe for concurrent use.
type ProblemBoard struct {
	problems []Problem
	nowFn    func() time.Time
}

func NewProblemBoard() *ProblemBoard {
	return &ProblemBoard{nowFn: func() time.Time { return time.Now().UTC() }}
}

// Report adds a ticket with status Reported. It is the only way tickets enter the board.
func (b *ProblemBoard) Report(description, location string, priority ProblemPriority) (Problem, error) {
	description = strings.TrimSpace(description)
	location = strings.TrimSpace(location)
	if description == "" || location == "" {
		return Problem{}, fmt.Errorf("%w: description and location are required", ErrInvalidInput)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	p := Problem{
		ID:          uuid.NewString(),
		Description: description,
		Location:    location,
		Priority:    priority,
		Status:      StatusReported,
		ReportedAt:  b.nowFn(),
	}
	b.problems = append(b.problems, p)
	return p, nil
}

// Delete removes the ticket with the given id and reports whether one was removed.
func (b *ProblemBoard) Delete(id string) bool {
	before := len(b.problems)
	b.problems = slices.DeleteFunc(b.problems, func(p Problem) bool { return p.ID == id })
	return len(b.problems) != before
}

// UpdateStatus sets any status from any status. Unknown ids are ignored.
func (b *ProblemBoard) UpdateStatus(id string, status ProblemStatus) (Problem, bool) {
	for i := range b.problems {
		if b.problems[i].ID == id {
			b.problems[i].Status = status
			return b.problems[i], true
		}
	}
	return Problem{}, false
}

// ClearResolvedAndClosed drops every Resolved or Closed ticket and returns how many went.
func (b *ProblemBoard) ClearResolvedAndClosed() int {
	before := len(b.problems)
	b.problems = slices.DeleteFunc(b.problems, Problem.resolvedOrClosed)
	return before - len(b.problems)
}

func (b *ProblemBoard) HasResolvedOrClosed() bool {
	return slices.ContainsFunc(b.problems, Problem.resolvedOrClosed)
}

// Clear empties the board.
func (b *ProblemBoard) Clear() {
	b.problems = nil
}

func (b *ProblemBoard) Len() int {
	return len(b.problems)
}

func (b *ProblemBoard) Get(id string) (Problem, bool) {
	for _, p := range b.problems {
		if p.ID == id {
			return p, true
		}
	}
	return Problem{}, false
}

// Filter yields the tickets whose description, location or id contains the search term
// (case-insensitive) and whose status and priority match. Each call is a fresh pass over a
// snapshot of the board taken when Filter is called.
func (b *ProblemBoard) Filter(filter ProblemFilter) iter.Seq[Problem] {
	snapshot := slices.Clone(b.problems)
	term := strings.ToLower(filter.SearchTerm)
	status := normalizeFilterValue(filter.Status)
	priority := normalizeFilterValue(filter.Priority)
	return func(yield func(Problem) bool) {
		for _, p := range snapshot {
			if !matchesTerm(p, term) {
				continue
			}
			if status != FilterAll && string(p.Status) != status {
				continue
			}
			if priority != FilterAll && string(p.Priority) != priority {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func matchesTerm(p Problem, term string) bool {
	return strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(p.ID), term)
}

func normalizeFilterValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, FilterAll) {
		return FilterAll
	}
	return trimmed
}
