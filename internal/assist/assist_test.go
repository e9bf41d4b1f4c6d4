package assist

import (
	"errors"
	"testing"

	"github.com/jaigner-hub/msgdesk/internal/data"
)

func strPtr(s string) *string { return &s }

func kinds(entries []Entry) []Kind {
	out := make([]Kind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}

func TestSubmit_ClearsPromptAndAppendsUserEntry(t *testing.T) {
	a := New("")
	a.Prompt = "  write a greeting  "

	req, err := a.Submit("a@b.com")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.Prompt != "write a greeting" || req.UserID != "a@b.com" || req.Model != DefaultModel {
		t.Errorf("request = %+v", req)
	}
	if a.Prompt != "" {
		t.Errorf("Prompt = %q, want cleared", a.Prompt)
	}
	if !a.Awaiting() {
		t.Error("Awaiting() = false")
	}
	tr := a.Transcript()
	if len(tr) != 1 || tr[0].Kind != KindUser || tr[0].String() != "You: write a greeting" {
		t.Errorf("transcript = %+v", tr)
	}

	a.Prompt = "again"
	if _, err := a.Submit("a@b.com"); !errors.Is(err, ErrBusy) {
		t.Errorf("Submit() while awaiting error = %v, want ErrBusy", err)
	}
	if a.Prompt != "again" || a.transcript.Len() != 1 {
		t.Error("busy submit changed state")
	}
}

func TestSubmit_EmptyPrompt(t *testing.T) {
	a := New("")
	a.Prompt = "   "
	if _, err := a.Submit("a@b.com"); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("error = %v, want ErrEmptyPrompt", err)
	}
	if a.Awaiting() || a.transcript.Len() != 0 {
		t.Error("empty prompt changed state")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		resp     *data.ChatResponse
		err      error
		wantKind Kind
		wantText string
	}{
		{"success", &data.ChatResponse{Success: true, Response: "Hello!"}, nil, KindAssistant, "Hello!"},
		{"collaborator failure", &data.ChatResponse{Success: false, Error: strPtr("quota exceeded")}, nil, KindError, "quota exceeded"},
		{"failure without reason", &data.ChatResponse{Success: false}, nil, KindError, "unknown error"},
		{"transport failure", nil, errors.New("network error contacting chat service: connection refused"), KindError, "network error contacting chat service: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New("")
			a.Prompt = "hi"
			if _, err := a.Submit("a@b.com"); err != nil {
				t.Fatal(err)
			}
			got := a.Resolve(tt.resp, tt.err)
			if got.Kind != tt.wantKind || got.Text != tt.wantText {
				t.Errorf("Resolve() = %+v, want %v %q", got, tt.wantKind, tt.wantText)
			}
			if a.Awaiting() {
				t.Error("still awaiting after Resolve")
			}
			if k := kinds(a.Transcript()); len(k) != 2 || k[0] != KindUser || k[1] != tt.wantKind {
				t.Errorf("transcript kinds = %v", k)
			}
		})
	}
}

func TestTranscript_OrderPreserved(t *testing.T) {
	a := New("")
	for _, p := range []string{"one", "two", "three"} {
		a.Prompt = p
		if _, err := a.Submit("a@b.com"); err != nil {
			t.Fatal(err)
		}
		a.Resolve(&data.ChatResponse{Success: true, Response: "re " + p}, nil)
	}
	want := []string{"You: one", "Assistant: re one", "You: two", "Assistant: re two", "You: three", "Assistant: re three"}
	got := a.Transcript()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i].String(), want[i])
		}
	}
	if last, ok := a.LastResponse(); !ok || last != "re three" {
		t.Errorf("LastResponse() = %q, %v", last, ok)
	}

	got[0].Text = "mutated"
	if a.Transcript()[0].Text != "one" {
		t.Error("Transcript() exposed internal slice")
	}
}

func TestModels(t *testing.T) {
	a := New("")
	if err := a.SelectModel("nope"); err == nil {
		t.Error("SelectModel(unknown) succeeded")
	}
	if err := a.SelectModel("o3"); err != nil || a.Model() != "o3" {
		t.Errorf("SelectModel(o3) = %v, model %q", err, a.Model())
	}

	a = New(Models[0])
	if got := a.CycleModel(-1); got != Models[len(Models)-1] {
		t.Errorf("CycleModel(-1) = %q, want wrap to last", got)
	}
	if got := a.CycleModel(1); got != Models[0] {
		t.Errorf("CycleModel(1) = %q, want wrap to first", got)
	}
}

func TestModelAlias(t *testing.T) {
	tests := map[string]string{
		"gpt-4o-mini":               "4o-mini",
		"openai/gpt-4.1":            "4.1",
		"o3":                        "o3",
		"some-very-long-model-name": "some-very-long-…",
	}
	for in, want := range tests {
		if got := ModelAlias(in); got != want {
			t.Errorf("ModelAlias(%q) = %q, want %q", in, got, want)
		}
	}
}
