package movement

import (
	"rst-backend/internal/models"
	"rst-backend/internal/pkg/apperror"
)

// JobContext carries the owning job of a status change. At most one of the
// two may be set; both empty is legal for lateral moves (AVAILABLE,
// UNAVAILABLE, maintenance, exception statuses).
type JobContext struct {
	Shipment *models.Shipment
	RepoJob  *models.EmptyRepoJob
}

// None reports whether no owning job is present.
func (j JobContext) None() bool {
	return j.Shipment == nil && j.RepoJob == nil
}

func (j JobContext) polPortID() *uint {
	if j.Shipment != nil {
		return &j.Shipment.PolPortID
	}
	if j.RepoJob != nil {
		return &j.RepoJob.PolPortID
	}
	return nil
}

func (j JobContext) podPortID() *uint {
	if j.Shipment != nil {
		return &j.Shipment.PodPortID
	}
	if j.RepoJob != nil {
		return &j.RepoJob.PodPortID
	}
	return nil
}

func (j JobContext) carrierID() *uint {
	if j.Shipment != nil {
		return j.Shipment.CarrierAddressBookID
	}
	if j.RepoJob != nil {
		return j.RepoJob.CarrierAddressBookID
	}
	return nil
}

func (j JobContext) emptyReturnDepotID() *uint {
	if j.Shipment != nil {
		return j.Shipment.EmptyReturnDepotAddressBookID
	}
	if j.RepoJob != nil {
		return j.RepoJob.EmptyReturnDepotAddressBookID
	}
	return nil
}

func (j JobContext) vesselName() string {
	if j.Shipment != nil {
		return j.Shipment.VesselName
	}
	if j.RepoJob != nil {
		return j.RepoJob.VesselName
	}
	return ""
}

// TransitionInput is the full request for one status change.
type TransitionInput struct {
	RequestedStatus string
	Previous        *models.MovementHistory
	Job             JobContext
	PortID          *uint
	AddressBookID   *uint
	Remarks         string
	VesselName      string
}

// Resolved is the computed next ledger row. Status is the canonical label,
// which may differ from the requested one (laden/empty variants are chosen
// from the job type).
type Resolved struct {
	Status        string
	PortID        *uint
	AddressBookID *uint
	Remarks       string
	VesselName    string
}

// ResolveTransition decides the next ledger row for a requested status
// change. Pure computation: the caller persists the row. Forward transitions
// re-derive port and depot from the owning job rather than trusting client
// input; only SOB and the exception statuses accept a client-supplied
// port/depot, because those are genuine operator choices.
func ResolveTransition(in TransitionInput) (Resolved, error) {
	requested := Normalize(in.RequestedStatus)
	if !knownStatuses[requested] {
		return Resolved{}, apperror.Validation("Unsupported status transition: %q", in.RequestedStatus)
	}
	if in.Job.Shipment != nil && in.Job.RepoJob != nil {
		return Resolved{}, apperror.Validation("A movement cannot belong to both a shipment and an empty repo job")
	}
	if in.Previous == nil {
		return Resolved{}, apperror.Validation("Previous movement history is required to change status")
	}

	fam := family(requested)
	next, ok := allowedNext[in.Previous.Status]
	if !ok {
		return Resolved{}, apperror.Validation("Unknown current status %q", in.Previous.Status)
	}
	legal := false
	for _, n := range next {
		if n == fam {
			legal = true
			break
		}
	}
	if !legal {
		return Resolved{}, apperror.Validation("Cannot change status from %s to %s", in.Previous.Status, requested)
	}

	out := Resolved{
		Status:     requested,
		Remarks:    in.Remarks,
		VesselName: in.VesselName,
	}

	switch fam {
	case StatusEmptyPickedUp:
		// Container leaves the depot, but location bookkeeping does not
		// change until gate-in.
		if in.Job.None() {
			return Resolved{}, apperror.Validation("A shipment or empty repo job is required for status %s", requested)
		}
		out.PortID = in.Previous.PortID
		out.AddressBookID = in.Previous.AddressBookID

	case familyGateIn:
		if in.Job.None() {
			return Resolved{}, apperror.Validation("A shipment or empty repo job is required for status %s", requested)
		}
		if in.Job.Shipment != nil {
			out.Status = StatusLadenGateIn
		} else {
			out.Status = StatusEmptyGateIn
		}
		out.PortID = in.Job.polPortID()
		out.AddressBookID = nil

	case StatusSOB:
		if in.Job.None() {
			return Resolved{}, apperror.Validation("A shipment or empty repo job is required for status %s", requested)
		}
		out.PortID = in.Job.podPortID()
		if out.PortID == nil {
			out.PortID = in.Job.polPortID()
		}
		// Carrier is an operator choice; fall back to the job's configured
		// carrier.
		if in.AddressBookID != nil {
			out.AddressBookID = in.AddressBookID
		} else {
			out.AddressBookID = in.Job.carrierID()
		}
		if out.VesselName == "" {
			out.VesselName = in.Job.vesselName()
		}

	case familyDischarge:
		if in.Job.None() {
			return Resolved{}, apperror.Validation("A shipment or empty repo job is required for status %s", requested)
		}
		if in.Job.Shipment != nil {
			out.Status = StatusLadenDischarge
		} else {
			out.Status = StatusEmptyDischarge
		}
		out.PortID = in.Job.podPortID()
		out.AddressBookID = nil

	case StatusEmptyReturned:
		if in.Job.None() {
			return Resolved{}, apperror.Validation("A shipment or empty repo job is required for status %s", requested)
		}
		out.PortID = in.Job.podPortID()
		out.AddressBookID = in.Job.emptyReturnDepotID()

	default:
		// Lateral moves and exception statuses: keep the previous location
		// unless the operator supplies one.
		out.PortID = in.Previous.PortID
		out.AddressBookID = in.Previous.AddressBookID
		if in.PortID != nil {
			out.PortID = in.PortID
		}
		if in.AddressBookID != nil {
			out.AddressBookID = in.AddressBookID
		}
	}

	return out, nil
}
