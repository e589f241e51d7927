package libcal

import "fmt"

// Booking transaction stages, in execution order.
const (
	StageGrid    = "grid"
	StageReserve = "reserve"
	StageExtend  = "extend"
	StageCommit  = "commit"
)

// Error kinds. Transport errors cover network failures and non-2xx status
// codes; protocol errors cover 2xx responses whose body does not carry what
// the stage needs.
const (
	KindTransport = "transport"
	KindProtocol  = "protocol"
)

// StageError reports which stage of the booking transaction failed and how.
// Any stage failure aborts the transaction; earlier stages are not rolled
// back because the remote cart expires on its own.
type StageError struct {
	Stage  string
	Kind   string
	Detail string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %s: %v", e.Stage, e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s %s error: %s", e.Stage, e.Kind, e.Detail)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func transportErr(stage, detail string, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindTransport, Detail: detail, Err: err}
}

func protocolErr(stage, detail string, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindProtocol, Detail: detail, Err: err}
}
