package domain

import "fmt"

// Status is the outcome of a resolution. NXDOMAIN and NODATA are ordinary
// outcomes, not errors.
type Status uint8

const (
	// StatusOK means answers (or a referral) were produced.
	StatusOK Status = iota
	// StatusNODATA means the name exists but has no records of the queried type.
	StatusNODATA
	// StatusNXDOMAIN means the name does not exist in the zone.
	StatusNXDOMAIN
	// StatusSERVFAIL means resolution failed, e.g. a CNAME cycle or a resolver fault.
	StatusSERVFAIL
	// StatusREFUSED means no loaded zone is authoritative for the name.
	StatusREFUSED
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNODATA:
		return "NODATA"
	case StatusNXDOMAIN:
		return "NXDOMAIN"
	case StatusSERVFAIL:
		return "SERVFAIL"
	case StatusREFUSED:
		return "REFUSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

// RCode maps the status onto its wire response code.
func (s Status) RCode() RCode {
	switch s {
	case StatusOK, StatusNODATA:
		return NOERROR
	case StatusNXDOMAIN:
		return NXDOMAIN
	case StatusREFUSED:
		return REFUSED
	default:
		return SERVFAIL
	}
}

// Response is the result of resolving one Question.
// This follows RFC 1035 §4.1.1 structure for DNS response messages.
type Response struct {
	Status        Status
	Authoritative bool
	Answers       []ResourceRecord
	Authority     []ResourceRecord
	Additional    []ResourceRecord
}

// NewErrorResponse returns a Response carrying only a status.
func NewErrorResponse(status Status) Response {
	return Response{Status: status}
}

// Validate checks whether the Response fields are structurally valid.
func (resp Response) Validate() error {
	if resp.Status > StatusREFUSED {
		return fmt.Errorf("invalid status: %d", resp.Status)
	}
	sections := []struct {
		name string
		rrs  []ResourceRecord
	}{
		{"answer", resp.Answers},
		{"authority", resp.Authority},
		{"additional", resp.Additional},
	}
	for _, s := range sections {
		for i, rr := range s.rrs {
			if err := rr.Validate(); err != nil {
				return fmt.Errorf("invalid %s record at index %d: %w", s.name, i, err)
			}
		}
	}
	return nil
}

// RCode returns the wire response code for the response.
func (resp Response) RCode() RCode {
	return resp.Status.RCode()
}

// IsError returns true if the response indicates an error condition.
func (resp Response) IsError() bool {
	return resp.RCode() != NOERROR
}

// IsReferral reports whether the response delegates to child name servers.
func (resp Response) IsReferral() bool {
	if resp.Status != StatusOK || len(resp.Answers) > 0 || len(resp.Authority) == 0 {
		return false
	}
	for _, rr := range resp.Authority {
		if rr.Type() != RRTypeNS {
			return false
		}
	}
	return true
}

// HasAnswers returns true if the response contains answer records.
func (resp Response) HasAnswers() bool {
	return len(resp.Answers) > 0
}

// AnswerCount returns the number of answer records in the response.
func (resp Response) AnswerCount() int {
	return len(resp.Answers)
}

// AuthorityCount returns the number of authority records in the response.
func (resp Response) AuthorityCount() int {
	return len(resp.Authority)
}

// AdditionalCount returns the number of additional records in the response.
func (resp Response) AdditionalCount() int {
	return len(resp.Additional)
}
