// Package composer is the message-authoring state machine:
// idle -> validating -> sending -> idle.
package composer

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jaigner-hub/msgdesk/internal/data"
)

// NoticeTTL is how long the success notice stays up.
const NoticeTTL = 3 * time.Second

var (
	ErrNoRecipients = errors.New("enter at least one recipient")
	ErrEmptyBody    = errors.New("message content is empty")
	ErrNotSignedIn  = errors.New("sign in before sending")
	// ErrBusy is returned while a send is in flight; the trigger stays disabled.
	ErrBusy = errors.New("a message is already being sent")
)

// State is the composer's phase.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSending
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSending:
		return "sending"
	default:
		return "idle"
	}
}

var recipientSep = regexp.MustCompile(`[,\s]+`)

// ParseRecipients splits s on commas and whitespace, dropping empties.
func ParseRecipients(s string) []string {
	var out []string
	for _, r := range recipientSep.Split(s, -1) {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Composer holds the draft and the send lifecycle.
type Composer struct {
	Recipients string
	Body       string

	state   State
	err     string
	pending []string // recipients of the in-flight send

	notice    string
	noticeSeq int
}

// New returns an idle composer.
func New() *Composer {
	return &Composer{}
}

// SetDraft replaces both fields. It is ignored while sending so the
// in-flight request and the visible draft cannot diverge.
func (c *Composer) SetDraft(recipients, body string) {
	if c.state == StateSending {
		return
	}
	c.Recipients = recipients
	c.Body = body
}

// AppendRecipients adds numbers to the recipients field, skipping ones
// already present.
func (c *Composer) AppendRecipients(numbers ...string) {
	if c.state == StateSending {
		return
	}
	have := map[string]bool{}
	list := ParseRecipients(c.Recipients)
	for _, r := range list {
		have[r] = true
	}
	for _, n := range numbers {
		if n = strings.TrimSpace(n); n != "" && !have[n] {
			list = append(list, n)
			have[n] = true
		}
	}
	c.Recipients = strings.Join(list, ", ")
}

// Submit validates the draft. On success it moves to sending and returns
// the request to issue; otherwise it returns to idle with an inline error
// and no request must be made.
func (c *Composer) Submit(owner string) (data.SendMessageRequest, error) {
	if c.state == StateSending {
		return data.SendMessageRequest{}, ErrBusy
	}
	c.state = StateValidating
	c.err = ""

	recipients := ParseRecipients(c.Recipients)
	body := strings.TrimSpace(c.Body)
	var err error
	switch {
	case owner == "":
		err = ErrNotSignedIn
	case len(recipients) == 0:
		err = ErrNoRecipients
	case body == "":
		err = ErrEmptyBody
	}
	if err != nil {
		c.state = StateIdle
		c.err = err.Error()
		return data.SendMessageRequest{}, err
	}

	c.state = StateSending
	c.pending = recipients
	return data.SendMessageRequest{
		UserEmail:  owner,
		Body:       body,
		Recipients: recipients,
	}, nil
}

// Succeed clears the draft and raises the success notice. The returned
// sequence number is passed to DismissNotice after NoticeTTL.
func (c *Composer) Succeed() int {
	c.notice = "Message sent to: " + strings.Join(c.pending, ", ")
	c.noticeSeq++
	c.Recipients = ""
	c.Body = ""
	c.err = ""
	c.pending = nil
	c.state = StateIdle
	return c.noticeSeq
}

// Fail keeps the draft and shows the collaborator's message verbatim.
func (c *Composer) Fail(err error) {
	c.state = StateIdle
	c.pending = nil
	if err != nil {
		c.err = err.Error()
	}
}

// DismissNotice hides the notice if seq is still the latest one.
func (c *Composer) DismissNotice(seq int) {
	if seq == c.noticeSeq {
		c.notice = ""
	}
}

// Reset discards the draft and any status, e.g. on logout.
func (c *Composer) Reset() {
	*c = Composer{noticeSeq: c.noticeSeq + 1}
}

func (c *Composer) State() State   { return c.state }
func (c *Composer) Sending() bool  { return c.state == StateSending }
func (c *Composer) Err() string    { return c.err }
func (c *Composer) Notice() string { return c.notice }

// CanSend mirrors the enabled state of the send trigger.
func (c *Composer) CanSend() bool {
	return c.state == StateIdle && strings.TrimSpace(c.Recipients) != "" && strings.TrimSpace(c.Body) != ""
}
