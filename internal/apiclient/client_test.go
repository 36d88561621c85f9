package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshelf/pkg/domain"
)

func TestLoginReturnsTokenAndSendsRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/book/login" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "a@b.com" || body["password"] != "secret1" {
			t.Errorf("unexpected credentials: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	tok, err := c.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("token = %q, want tok-1", tok)
	}
}

func TestErrorDecodingPrefersServerMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", `{"error":"email taken"}`, "email taken"},
		{"empty body", ``, "401 Unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second)
			_, err := c.Login(context.Background(), "a@b.com", "pw")
			if err == nil {
				t.Fatalf("expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *APIError", err)
			}
			if apiErr.Message != tc.want {
				t.Fatalf("message = %q, want %q", apiErr.Message, tc.want)
			}
			if apiErr.Status != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", apiErr.Status)
			}
		})
	}
}

func TestListBooksSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode([]domain.Book{
			{ID: "1", Title: "Dune", Author: "Herbert"},
			{ID: "2", Title: "Solaris", Author: "Lem"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got, err := c.ListBooks(context.Background(), "tok-9")
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Dune" || got[1].ID != "2" {
		t.Fatalf("unexpected books: %+v", got)
	}
}

func TestAddBookReturnsCanonicalRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]domain.Book{
			"book": {ID: "srv-42", Title: body["title"], Author: body["author"]},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	book, err := c.AddBook(context.Background(), "tok", "Dune", "Herbert")
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if book.ID != "srv-42" || book.Title != "Dune" || book.Author != "Herbert" {
		t.Fatalf("unexpected book: %+v", book)
	}
}

func TestDeleteBookTargetsID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.DeleteBook(context.Background(), "tok", "abc-1"); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if gotPath != "DELETE /api/book/abc-1" {
		t.Fatalf("request = %q", gotPath)
	}
}

func TestMessageExtraction(t *testing.T) {
	if got := Message(&APIError{Status: 400, Message: "Title is required"}); got != "Title is required" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(errors.New("dial tcp: connection refused")); got != GenericErrorMessage {
		t.Fatalf("Message = %q, want generic fallback", got)
	}
	if got := Message(&APIError{Status: 500}); got != GenericErrorMessage {
		t.Fatalf("Message = %q, want generic fallback for empty server message", got)
	}
	if got := Message(nil); got != "" {
		t.Fatalf("Message(nil) = %q, want empty", got)
	}
}
