package status

import (
	"errors"
	"fmt"
)

// Kind tags a failure with an actionable category. Callers pick remediation
// messages off the kind instead of pattern-matching error text.
type Kind int

const (
	GenericFailure Kind = iota
	InvalidRoot
	NotEmpty
	NestedEnlistment
	ToolingMissing
	BlankCacheServerUrl
	UnknownCacheServer
	RefsUnavailable
	BranchNotFound
	AuthFailed
	PathTooLongForLock
	EnlistmentBusy
)

var kindNames = map[Kind]string{
	GenericFailure:      "GenericFailure",
	InvalidRoot:         "InvalidRoot",
	NotEmpty:            "NotEmpty",
	NestedEnlistment:    "NestedEnlistment",
	ToolingMissing:      "ToolingMissing",
	BlankCacheServerUrl: "BlankCacheServerUrl",
	UnknownCacheServer:  "UnknownCacheServer",
	RefsUnavailable:     "RefsUnavailable",
	BranchNotFound:      "BranchNotFound",
	AuthFailed:          "AuthFailed",
	PathTooLongForLock:  "PathTooLongForLock",
	EnlistmentBusy:      "EnlistmentBusy",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is the outcome of one fallible step. Every step in the clone and
// upgrade workflows returns one; the caller consumes it immediately to decide
// control flow. Messages travel unchanged through the orchestrators.
type Result struct {
	Ok      bool
	Kind    Kind
	Message string
}

func Success(format string, args ...interface{}) Result {
	return Result{Ok: true, Message: fmt.Sprintf(format, args...)}
}

func Failure(kind Kind, format string, args ...interface{}) Result {
	return Result{Ok: false, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func FromError(kind Kind, err error) Result {
	return Result{Ok: false, Kind: kind, Message: err.Error()}
}

func (r Result) Failed() bool {
	return !r.Ok
}

// Err converts a failed result back into an error for callers at the CLI
// boundary. A successful result yields nil.
func (r Result) Err() error {
	if r.Ok {
		return nil
	}
	return errors.New(r.Message)
}
