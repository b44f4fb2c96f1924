package enum

type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientInactive  ClientStatus = "inactive"
	ClientTrial     ClientStatus = "trial"
	ClientSuspended ClientStatus = "suspended"
)

func (s ClientStatus) String() string {
	return string(s)
}
