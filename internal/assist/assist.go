// Package assist is the chat-assist side panel: a prompt goes to the chat
// collaborator and the exchange is appended to a transcript.
package assist

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaigner-hub/msgdesk/internal/data"
)

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrBusy        = errors.New("waiting for the previous reply")
	ErrNotSignedIn = errors.New("sign in before chatting")
)

// Kind tags a transcript entry.
type Kind int

const (
	KindUser Kind = iota
	KindAssistant
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "You"
	case KindAssistant:
		return "Assistant"
	default:
		return "Error"
	}
}

// Entry is one transcript line.
type Entry struct {
	Kind Kind
	Text string
	At   time.Time
}

func (e Entry) String() string {
	return e.Kind.String() + ": " + e.Text
}

// Transcript is append-only; entries are never reordered or removed.
type Transcript struct {
	entries []Entry
}

func (t *Transcript) append(e Entry) {
	t.entries = append(t.entries, e)
}

// Entries returns a copy in chronological order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int { return len(t.entries) }

// Assistant drives idle -> awaiting -> idle.
type Assistant struct {
	Prompt string

	model      string
	awaiting   bool
	transcript Transcript
	now        func() time.Time
}

// New returns an idle assistant using model, or DefaultModel when empty.
func New(model string) *Assistant {
	if model == "" {
		model = DefaultModel
	}
	return &Assistant{model: model, now: time.Now}
}

// Submit consumes the prompt. It clears the input, records the user entry
// and returns the request to send. userID is the signed-in email.
func (a *Assistant) Submit(userID string) (data.ChatRequest, error) {
	if a.awaiting {
		return data.ChatRequest{}, ErrBusy
	}
	prompt := strings.TrimSpace(a.Prompt)
	if prompt == "" {
		return data.ChatRequest{}, ErrEmptyPrompt
	}
	if userID == "" {
		return data.ChatRequest{}, ErrNotSignedIn
	}
	a.Prompt = ""
	a.transcript.append(Entry{Kind: KindUser, Text: prompt, At: a.now()})
	a.awaiting = true
	return data.ChatRequest{Prompt: prompt, UserID: userID, Model: a.model}, nil
}

// Resolve records the outcome of the pending request and returns to idle.
// A transport or collaborator error and a reply with Success=false both
// become error entries.
func (a *Assistant) Resolve(resp *data.ChatResponse, err error) Entry {
	a.awaiting = false
	var e Entry
	switch {
	case err != nil:
		e = Entry{Kind: KindError, Text: err.Error()}
	case resp == nil:
		e = Entry{Kind: KindError, Text: "empty reply from chat service"}
	case !resp.Success:
		reason := resp.ErrorText()
		if reason == "" {
			reason = "unknown error"
		}
		e = Entry{Kind: KindError, Text: reason}
	default:
		e = Entry{Kind: KindAssistant, Text: data.Sanitize(resp.Response)}
	}
	e.At = a.now()
	a.transcript.append(e)
	return e
}

// SelectModel switches the model used by later prompts.
func (a *Assistant) SelectModel(name string) error {
	if !KnownModel(name) {
		return fmt.Errorf("unknown model %q", name)
	}
	a.model = name
	return nil
}

// CycleModel steps through the catalogue by delta, wrapping at both ends.
func (a *Assistant) CycleModel(delta int) string {
	i := modelIndex(a.model)
	if i < 0 {
		i = modelIndex(DefaultModel)
	}
	n := len(Models)
	a.model = Models[((i+delta)%n+n)%n]
	return a.model
}

// LastResponse returns the newest assistant reply, if any.
func (a *Assistant) LastResponse() (string, bool) {
	for i := len(a.transcript.entries) - 1; i >= 0; i-- {
		if e := a.transcript.entries[i]; e.Kind == KindAssistant {
			return e.Text, true
		}
	}
	return "", false
}

// Reset drops the transcript and input, e.g. on logout. The model is kept.
func (a *Assistant) Reset() {
	a.Prompt = ""
	a.awaiting = false
	a.transcript = Transcript{}
}

func (a *Assistant) Model() string       { return a.model }
func (a *Assistant) Awaiting() bool      { return a.awaiting }
func (a *Assistant) Transcript() []Entry { return a.transcript.Entries() }
func (a *Assistant) CanSubmit() bool     { return !a.awaiting && strings.TrimSpace(a.Prompt) != "" }
