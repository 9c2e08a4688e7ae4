package booking

import "time"

// The four fixed progress milestones shown to customers. Step state is
// always derived from the booking snapshot; stored step values are never
// trusted, except that the first step is completed at creation by
// construction.
const (
	StepTitleRequested  = "Service Requested"
	StepTitleAssignment = "Professional Assignment"
	StepTitleInitiation = "Service Initiation"
	StepTitleCompletion = "Service Completion"
)

type Step struct {
	Title     string
	Completed bool
	Time      *time.Time
}

// DeriveSteps computes the milestone list from status and the persisted
// transition timestamps. It is deterministic and side-effect-free: two
// calls on the same snapshot yield identical output.
func DeriveSteps(b *Booking) []Step {
	createdAt := b.CreatedAt()
	status := b.Status()

	steps := []Step{
		{Title: StepTitleRequested, Completed: true, Time: &createdAt},
		{Title: StepTitleAssignment},
		{Title: StepTitleInitiation},
		{Title: StepTitleCompletion},
	}

	// Completion follows the status threshold alone; the timestamp is a
	// nice-to-have and may be absent on documents written by older clients.
	if status.ReachedAtLeast(StatusAccepted) {
		steps[1].Completed = true
		steps[1].Time = b.AcceptedAt()
	}
	if status.ReachedAtLeast(StatusInProgress) {
		steps[2].Completed = true
		steps[2].Time = b.StartedAt()
	}
	if status.ReachedAtLeast(StatusCompleted) {
		steps[3].Completed = true
		steps[3].Time = b.CompletedAt()
	}

	return steps
}
