package auth

import (
	"fmt"

	"github.com/mrlokans/authgate/internal/entities"
)

// Rejection reasons returned to clients.
const (
	MsgIncorrectCredentials = "Incorrect username or password."
	MsgIncorrectPassword    = "Incorrect password."
	MsgMissingCredentials   = "Missing credentials"
	MsgNoToken              = "No auth token"
	MsgInvalidToken         = "Invalid token"
)

// OutcomeKind tags the result of a single verification call.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeRejected
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of a strategy run. Only the fields matching Kind are set.
type Outcome struct {
	Kind   OutcomeKind
	User   *entities.User
	Reason string
	// Status overrides the 401 answered for a rejection.
	Status int
	Err    error
}

func Success(user *entities.User) Outcome {
	return Outcome{Kind: OutcomeSuccess, User: user}
}

func Rejected(reason string) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}

// RejectedWithStatus is a rejection answered with status instead of 401.
func RejectedWithStatus(reason string, status int) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason, Status: status}
}

func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// OK reports whether the outcome carries a verified user.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess && o.User != nil
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		if o.User != nil {
			return fmt.Sprintf("success(user_id=%d)", o.User.ID)
		}
		return "success(<nil>)"
	case OutcomeRejected:
		return fmt.Sprintf("rejected(%q)", o.Reason)
	case OutcomeError:
		return fmt.Sprintf("error(%v)", o.Err)
	default:
		return o.Kind.String()
	}
}
