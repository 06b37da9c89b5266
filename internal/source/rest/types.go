package rest

import (
	"encoding/json"
	"strings"
)

// errorResponse is the backend's error body. Detail is a string for
// handler errors and a list of field errors for request validation.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// errorDetail extracts a readable message from an error body, or "".
func errorDetail(body []byte) string {
	var er errorResponse
	if json.Unmarshal(body, &er) != nil || len(er.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(er.Detail, &s) == nil {
		return s
	}

	var fields []fieldError
	if json.Unmarshal(er.Detail, &fields) == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if len(f.Loc) > 0 {
				if name, ok := f.Loc[len(f.Loc)-1].(string); ok {
					msgs = append(msgs, name+": "+f.Msg)
					continue
				}
			}
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(er.Detail)
}

// Me is the response from GET /auth/me.
type Me struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// ticketPayload is the create/update body. The backend ignores ids, numbers
// and timestamps it assigns itself.
type ticketPayload struct {
	Priority      string   `json:"priority"`
	Volume        string   `json:"volume"`
	CustomerID    string   `json:"customer_id"`
	CustomerTrunk string   `json:"customer_trunk"`
	Destination   string   `json:"destination,omitempty"`
	IssueTypes    []string `json:"issue_types"`
	IssueOther    string   `json:"issue_other,omitempty"`
	OpenedVia     []string `json:"opened_via"`
	AssignedTo    *string  `json:"assigned_to"`
	Status        string   `json:"status"`
	SID           string   `json:"sid,omitempty"`
	Content       string   `json:"content,omitempty"`
}
