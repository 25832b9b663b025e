package movement

import "strings"

// Canonical container status labels stored on ledger rows.
const (
	StatusAvailable       = "AVAILABLE"
	StatusAllotted        = "ALLOTTED"
	StatusEmptyPickedUp   = "EMPTY PICKED UP"
	StatusLadenGateIn     = "LADEN GATE-IN"
	StatusEmptyGateIn     = "EMPTY GATE-IN"
	StatusSOB             = "SOB"
	StatusLadenDischarge  = "LADEN DISCHARGE(ATA)"
	StatusEmptyDischarge  = "EMPTY DISCHARGE"
	StatusEmptyReturned   = "EMPTY RETURNED"
	StatusUnavailable     = "UNAVAILABLE"
	StatusUnderCleaning   = "UNDER CLEANING"
	StatusUnderSurvey     = "UNDER SURVEY"
	StatusUnderRepair     = "UNDER REPAIR"
	StatusUnderTesting    = "UNDER TESTING"
	StatusDamaged         = "DAMAGED"
	StatusCancelled       = "CANCELLED"
	StatusReturnedToDepot = "RETURNED TO DEPOT"
)

// Transition families: a requested gate-in or discharge label is resolved to
// its laden/empty variant from the owning job type, so legality is checked
// against the family rather than the literal label.
const (
	familyGateIn    = "GATE-IN"
	familyDischarge = "DISCHARGE"
)

var maintenanceStatuses = []string{
	StatusUnderCleaning,
	StatusUnderSurvey,
	StatusUnderRepair,
	StatusUnderTesting,
}

// allowedNext maps a previous status to the transition families it may move
// into.
var allowedNext = map[string][]string{
	StatusAllotted:        {StatusEmptyPickedUp},
	StatusEmptyPickedUp:   {familyGateIn, StatusDamaged, StatusCancelled},
	StatusLadenGateIn:     {StatusSOB},
	StatusEmptyGateIn:     {StatusSOB},
	StatusSOB:             {familyDischarge, StatusDamaged},
	StatusLadenDischarge:  {StatusEmptyReturned, StatusDamaged},
	StatusEmptyDischarge:  {StatusEmptyReturned, StatusDamaged},
	StatusEmptyReturned:   {StatusAvailable, StatusUnavailable},
	StatusAvailable:       {StatusUnavailable},
	StatusUnavailable:     {StatusUnderCleaning, StatusUnderSurvey, StatusUnderRepair, StatusUnderTesting},
	StatusDamaged:         {StatusReturnedToDepot},
	StatusCancelled:       {StatusReturnedToDepot},
	StatusReturnedToDepot: {StatusUnavailable, StatusAvailable},
}

func init() {
	// Maintenance states exit to AVAILABLE or any other maintenance state.
	for _, m := range maintenanceStatuses {
		next := []string{StatusAvailable}
		for _, other := range maintenanceStatuses {
			if other != m {
				next = append(next, other)
			}
		}
		allowedNext[m] = next
	}
}

// family collapses laden/empty variants to their transition family.
func family(status string) string {
	switch status {
	case StatusLadenGateIn, StatusEmptyGateIn:
		return familyGateIn
	case StatusLadenDischarge, StatusEmptyDischarge:
		return familyDischarge
	default:
		return status
	}
}

// knownStatuses is the set of labels the resolver accepts as a request.
var knownStatuses = map[string]bool{}

func init() {
	for _, s := range []string{
		StatusAvailable, StatusAllotted, StatusEmptyPickedUp,
		StatusLadenGateIn, StatusEmptyGateIn, StatusSOB,
		StatusLadenDischarge, StatusEmptyDischarge, StatusEmptyReturned,
		StatusUnavailable, StatusUnderCleaning, StatusUnderSurvey,
		StatusUnderRepair, StatusUnderTesting, StatusDamaged,
		StatusCancelled, StatusReturnedToDepot,
	} {
		knownStatuses[s] = true
	}
}

// IsMaintenance reports whether status is one of the maintenance states.
func IsMaintenance(status string) bool {
	switch status {
	case StatusUnderCleaning, StatusUnderSurvey, StatusUnderRepair, StatusUnderTesting:
		return true
	}
	return false
}

// movedStatuses marks statuses that represent physical movement after
// allotment; a container that ever carried one is no longer deletable.
var movedStatuses = map[string]bool{
	StatusEmptyPickedUp:   true,
	StatusLadenGateIn:     true,
	StatusEmptyGateIn:     true,
	StatusSOB:             true,
	StatusLadenDischarge:  true,
	StatusEmptyDischarge:  true,
	StatusEmptyReturned:   true,
	StatusDamaged:         true,
	StatusCancelled:       true,
	StatusReturnedToDepot: true,
}

// Normalize upper-cases and trims a requested status label.
func Normalize(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}
