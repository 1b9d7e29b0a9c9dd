package results

import "strconv"

// Finding is one coded conformance result. Negative codes are errors and
// positive codes are warnings.
type Finding struct {
	Code       int    `json:"code"`
	Value      string `json:"value"`
	Message    string `json:"message"`
	URI        string `json:"queriedURI,omitempty"`
	Method     string `json:"httpMethod,omitempty"`
	HTTPStatus int    `json:"httpStatusCode,omitempty"`
	Group      string `json:"group,omitempty"`
}

func (f Finding) IsError() bool {
	return f.Code < 0
}

func (f Finding) IsWarning() bool {
	return f.Code > 0
}

func (f Finding) String() string {
	return "[" + strconv.Itoa(f.Code) + "] " + f.Message + " (" + f.Value + ")"
}

// RuleFailure records a rule whose validation could not complete. It is kept
// apart from findings so a broken rule is never mistaken for a conformance
// problem of the server.
type RuleFailure struct {
	Rule   string `json:"rule"`
	Group  string `json:"group"`
	Reason string `json:"reason"`
}
