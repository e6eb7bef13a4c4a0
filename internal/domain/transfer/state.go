package domain_transfer

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
	StatusCompensated Status = "COMPENSATED"
)

func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCompensated
}

func (s Status) Valid() bool {
	return s == StatusPending || s.IsFinal()
}
