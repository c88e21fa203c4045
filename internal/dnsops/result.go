package dnsops

// Status classifies the outcome of an operation against the upstream API.
// Warning means the primary step succeeded but a follow-up step failed and
// was not rolled back; callers must surface it, not treat it as success.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusFailure
)

// OpResult is the outcome every mutating operation returns. Nothing in this
// package panics or leaks errors past the operation boundary.
type OpResult struct {
	Status  Status
	Message string
}

func ok(msg string) OpResult     { return OpResult{Status: StatusOK, Message: msg} }
func warn(msg string) OpResult   { return OpResult{Status: StatusWarning, Message: msg} }
func failed(msg string) OpResult { return OpResult{Status: StatusFailure, Message: msg} }

func (r OpResult) OK() bool     { return r.Status == StatusOK }
func (r OpResult) Failed() bool { return r.Status == StatusFailure }
