package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OrgRef is a weak reference to an organization. Legacy clients send it as a
// number, a numeric string, the literal strings "null"/"undefined", or null,
// so it unmarshals tolerantly and compares by numeric value where possible.
type OrgRef string

// UnmarshalJSON accepts a JSON number, string or null.
func (o *OrgRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*o = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = OrgRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*o = OrgRef(n.String())
	return nil
}

// IsUnscoped reports whether the reference carries no organization at all.
// Empty and the literal "null"/"undefined" strings are legacy markers for
// organization-agnostic rows.
func (o OrgRef) IsUnscoped() bool {
	switch strings.TrimSpace(string(o)) {
	case "", "null", "undefined":
		return true
	}
	return false
}

// Matches compares against a resolved organization id. Both sides are cast to
// numbers when possible; otherwise plain string equality applies.
func (o OrgRef) Matches(orgID string) bool {
	if orgID == "" {
		return false
	}
	a := strings.TrimSpace(string(o))
	b := strings.TrimSpace(orgID)
	af, errA := strconv.ParseFloat(a, 64)
	bf, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return af == bf
	}
	return a == b
}
