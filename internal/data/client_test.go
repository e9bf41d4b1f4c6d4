package data

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jaigner-hub/msgdesk/internal/config"
)

// newTestClient points every service at srv.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.AuthURL = srv.URL
	cfg.MessageURL = srv.URL
	cfg.DashboardURL = srv.URL
	cfg.PhonebookURL = srv.URL
	cfg.AgentURL = srv.URL
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg)
}

func TestClient_SendMessage_RequestShape(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/messages" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	req := SendMessageRequest{UserEmail: "a@b.com", Body: "hello", Recipients: []string{"010-1111-2222"}}
	if err := c.SendMessage(context.Background(), req); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got.UserEmail != "a@b.com" || got.Body != "hello" || len(got.Recipients) != 1 {
		t.Errorf("server received %+v", got)
	}
}

func TestClient_APIErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "recipients must not be empty")
	}))
	defer srv.Close()

	err := newTestClient(t, srv).SendMessage(context.Background(), SendMessageRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T %v, want *APIError", err, err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	msg := err.Error()
	for _, want := range []string{"400", "Bad Request", "recipients must not be empty"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want containing %q", msg, want)
		}
	}
	if StatusCode(err) != 400 {
		t.Errorf("StatusCode() = %d, want 400", StatusCode(err))
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.FetchMessages(context.Background(), "a@b.com")
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("error = %T %v, want *TransportError", err, err)
	}
	if !strings.Contains(err.Error(), "network error") {
		t.Errorf("Error() = %q, want network error message", err.Error())
	}
}

func TestClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv).FetchMessages(ctx, "a@b.com")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestClient_MalformedBodyFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"empty", ""},
		{"wrong shape", `{"rows": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).FetchMessages(context.Background(), "a@b.com")
			var dErr *DecodeError
			if !errors.As(err, &dErr) {
				t.Errorf("error = %T %v, want *DecodeError", err, err)
			}
		})
	}
}

func TestClient_FetchMessages_QueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userEmail"); got != "kim+test@b.com" {
			t.Errorf("userEmail = %q", got)
		}
		io.WriteString(w, `[
			{"id": 7, "body": "numeric id", "createdAt": "2024-03-01T10:00:00"},
			{"id": "abc", "body": "string id", "createdAt": "2024-03-02T10:00:00Z", "recipients": ["010-1234-5678"]}
		]`)
	}))
	defer srv.Close()

	rows, err := newTestClient(t, srv).FetchMessages(context.Background(), "kim+test@b.com")
	if err != nil {
		t.Fatalf("FetchMessages() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].ID != "7" || rows[1].ID != "abc" {
		t.Errorf("ids = %q, %q", rows[0].ID, rows[1].ID)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !rows[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", rows[0].CreatedAt.Time, want)
	}
	if len(rows[1].Recipients) != 1 {
		t.Errorf("Recipients = %v", rows[1].Recipients)
	}
}

func TestClient_MonthlyCounts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"twelve counts", `{"userEmail":"a@b.com","year":2023,"counts":[0,5,10,15,20,25,30,35,40,45,50,55]}`, false},
		{"short counts", `{"userEmail":"a@b.com","year":2023,"counts":[1,2,3]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("year") != "2023" || q.Get("userEmail") != "a@b.com" {
					t.Errorf("query = %v", q)
				}
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res, err := newTestClient(t, srv).MonthlyCounts(context.Background(), "a@b.com", 2023)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthlyCounts() error = %v", err)
			}
			if len(res.Counts) != 12 {
				t.Errorf("len(Counts) = %d", len(res.Counts))
			}
		})
	}
}

func TestClient_CreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateContactRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          42,
			"ownerEmail":  req.OwnerEmail,
			"contactName": req.ContactName,
			"phoneNumber": req.PhoneNumber,
			"carrier":     req.Carrier,
			"createdAt":   "2024-05-01T09:00:00",
			"updatedAt":   "2024-05-01T09:00:00",
		})
	}))
	defer srv.Close()

	req := CreateContactRequest{OwnerEmail: "a@b.com", ContactName: "Kim", PhoneNumber: "010-1234-5678", Carrier: CarrierSKT}
	got, err := newTestClient(t, srv).CreateContact(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	if got.ID != "42" || got.ContactName != "Kim" || got.PhoneNumber != "010-1234-5678" || got.Carrier != CarrierSKT {
		t.Errorf("CreateContact() = %+v", got)
	}
}

func TestClient_ContactsByOwner_EscapesEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/phonebook/owner/a@b.com" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv).ContactsByOwner(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("ContactsByOwner() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len = %d, want 0", len(list))
	}
}

func TestClient_UnsupportedContactActions(t *testing.T) {
	c := NewClient(config.Default())
	if _, err := c.UpdateContact(context.Background(), "1", CreateContactRequest{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("UpdateContact() error = %v, want ErrUnsupported", err)
	}
	if err := c.DeleteContact(context.Background(), "1"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("DeleteContact() error = %v, want ErrUnsupported", err)
	}
}

func TestClient_LoginAndSignupConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var creds Credentials
			json.NewDecoder(r.Body).Decode(&creds)
			json.NewEncoder(w).Encode(LoginResult{Valid: creds.Password == "secret"})
		case "/api/v1/auth/signup":
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, "email already registered")
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	ok, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil || !ok {
		t.Errorf("Login(valid) = %v, %v", ok, err)
	}
	ok, err = c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	if err != nil || ok {
		t.Errorf("Login(invalid) = %v, %v", ok, err)
	}

	err = c.Signup(context.Background(), Credentials{Email: "a@b.com", Password: "secret"})
	if !IsConflict(err) {
		t.Errorf("Signup() error = %v, want conflict", err)
	}
}

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-4o-mini" || req.UserID != "a@b.com" {
			t.Errorf("request = %+v", req)
		}
		io.WriteString(w, `{"prompt":"hi","response":"","success":false,"error":"quota exceeded"}`)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).Chat(context.Background(), ChatRequest{Prompt: "hi", UserID: "a@b.com", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.Success || res.ErrorText() != "quota exceeded" {
		t.Errorf("Chat() = %+v", res)
	}
}

func TestSanitize(t *testing.T) {
	in := "\x1b[31mred\x1b[0m\r\nnext\x07line\tok"
	want := "red\nnextline\tok"
	if got := Sanitize(in); got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
}

func TestParseCarrier(t *testing.T) {
	tests := []struct {
		in      string
		want    Carrier
		wantErr bool
	}{
		{"SKT", CarrierSKT, false},
		{"kt", CarrierKT, false},
		{" lg ", CarrierLG, false},
		{"mvno", CarrierMVNO, false},
		{"", "", true},
		{"VERIZON", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCarrier(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseCarrier(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}
