// Package validate holds the client-side checks that gate requests. A value
// that fails here never reaches a collaborator.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jaigner-hub/msgdesk/internal/data"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Korean mobile numbers: 010/011/016/017/018/019, optional hyphens.
	phoneRe = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)
)

// Errors maps a field name to its problem. The zero value has no errors.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// Phone reports whether s is a Korean mobile number such as 010-1234-5678.
func Phone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

// Contact checks every field of a new contact and returns the request to
// send, or the per-field errors.
func Contact(ownerEmail, name, phone, carrier string) (data.CreateContactRequest, error) {
	errs := Errors{}
	if !Email(ownerEmail) {
		errs["owner"] = "sign in with a valid email first"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		errs["name"] = "name is required"
	}
	phone = strings.TrimSpace(phone)
	if !Phone(phone) {
		errs["phone"] = "enter a mobile number like 010-1234-5678"
	}
	c, err := data.ParseCarrier(carrier)
	if err != nil {
		errs["carrier"] = "choose SKT, KT, LG or MVNO"
	}
	if err := errs.Err(); err != nil {
		return data.CreateContactRequest{}, err
	}
	return data.CreateContactRequest{
		OwnerEmail:  strings.TrimSpace(ownerEmail),
		ContactName: name,
		PhoneNumber: phone,
		Carrier:     c,
	}, nil
}

// Signup checks a signup form. The password confirmation must match.
func Signup(email, password, confirm string) (data.Credentials, error) {
	errs := Errors{}
	if !Email(email) {
		errs["email"] = "enter a valid email"
	}
	if password == "" {
		errs["password"] = "password is required"
	} else if password != confirm {
		errs["confirm"] = "passwords do not match"
	}
	if err := errs.Err(); err != nil {
		return data.Credentials{}, err
	}
	return data.Credentials{Email: strings.TrimSpace(email), Password: password}, nil
}

// Login checks a login form.
func Login(email, password string) (data.Credentials, error) {
	errs := Errors{}
	if !Email(email) {
		errs["email"] = "enter a valid email"
	}
	if password == "" {
		errs["password"] = "password is required"
	}
	if err := errs.Err(); err != nil {
		return data.Credentials{}, err
	}
	return data.Credentials{Email: strings.TrimSpace(email), Password: password}, nil
}
