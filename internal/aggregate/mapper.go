package aggregate

import (
	"strings"

	"jiraview/internal/shared"
)

// Mapper collapses a raw category cell into a group label
type Mapper func(string) string

// Status group labels
const (
	StatusFinished  = "Finalizada"
	StatusCancelled = "Cancelado"
	StatusOpen      = "Abiertos"
)

// Priority group labels
const (
	PriorityHigh    = "Prioridad Alta"
	PriorityRegular = "Prioridad Regular"
)

// MapStatus groups workflow states: anything finished, closed or resolved is
// Finalizada, cancelled is Cancelado and everything else is Abiertos.
func MapStatus(status string) string {
	s := shared.Fold(status)
	switch {
	case strings.Contains(s, "finalizada"), strings.Contains(s, "cerrado"), strings.Contains(s, "resuelto"):
		return StatusFinished
	case strings.Contains(s, "cancelado"):
		return StatusCancelled
	default:
		return StatusOpen
	}
}

var highPriorities = map[string]struct{}{
	"highest":    {},
	"high":       {},
	"alta":       {},
	"muy alta":   {},
	"critica":    {},
	"critical":   {},
	"blocker":    {},
	"bloqueante": {},
	"urgente":    {},
}

// MapPriority splits priorities into high and regular.
func MapPriority(priority string) string {
	if _, ok := highPriorities[shared.Fold(priority)]; ok {
		return PriorityHigh
	}
	return PriorityRegular
}

// MapperKind selects how category cells are grouped
type MapperKind string

const (
	// MapperAuto picks the status or priority mapper from the column name
	MapperAuto     MapperKind = ""
	MapperNone     MapperKind = "none"
	MapperStatus   MapperKind = "status"
	MapperPriority MapperKind = "priority"
)

// Roles names the columns that get a mapper automatically.
type Roles struct {
	Status   string `json:"status" yaml:"status"`
	Priority string `json:"priority" yaml:"priority"`
}

// DefaultRoles matches the issue tracker's Spanish export
var DefaultRoles = Roles{Status: "Estado", Priority: "Prioridad"}

// resolve returns the mapper for column, or nil when cells are used as is.
func (r Roles) resolve(kind MapperKind, column string) Mapper {
	switch kind {
	case MapperStatus:
		return MapStatus
	case MapperPriority:
		return MapPriority
	case MapperNone:
		return nil
	}
	switch {
	case r.Status != "" && shared.EqualFold(column, r.Status):
		return MapStatus
	case r.Priority != "" && shared.EqualFold(column, r.Priority):
		return MapPriority
	default:
		return nil
	}
}
