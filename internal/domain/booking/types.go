package booking

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// statusRank orders the forward chain. Rejected sits outside the chain and
// is only reachable from pending.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusAccepted:   1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next in a single step.
func (s Status) CanTransitionTo(next Status) bool {
	if s == StatusPending && next == StatusRejected {
		return true
	}
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	return okFrom && okTo && to == from+1
}

// ReachedAtLeast reports whether s is at or past threshold on the forward
// chain. Rejected never reaches anything past pending.
func (s Status) ReachedAtLeast(threshold Status) bool {
	from, okFrom := statusRank[s]
	to, okTo := statusRank[threshold]
	return okFrom && okTo && from >= to
}

type ServiceType string

const (
	ServicePlumbing       ServiceType = "plumbing"
	ServiceElectrical     ServiceType = "electrical"
	ServicePainting       ServiceType = "painting"
	ServiceCarpentry      ServiceType = "carpentry"
	ServiceHVAC           ServiceType = "hvac"
	ServiceLandscaping    ServiceType = "landscaping"
	ServiceGeneralRepairs ServiceType = "general-repairs"
	ServiceCleaning       ServiceType = "cleaning"
)

var serviceTypes = map[ServiceType]struct{}{
	ServicePlumbing:       {},
	ServiceElectrical:     {},
	ServicePainting:       {},
	ServiceCarpentry:      {},
	ServiceHVAC:           {},
	ServiceLandscaping:    {},
	ServiceGeneralRepairs: {},
	ServiceCleaning:       {},
}

func (t ServiceType) String() string {
	return string(t)
}

func (t ServiceType) IsValid() bool {
	_, ok := serviceTypes[t]
	return ok
}

type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = ""
	PaymentStatusCompleted PaymentStatus = "completed"
)
