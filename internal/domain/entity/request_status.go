package entity

// RequestStatus estado de una solicitud de traslado o ajuste.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Terminal indica si la solicitud ya no admite transiciones.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid indica si el estado es uno de los conocidos.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s.Terminal()
}
