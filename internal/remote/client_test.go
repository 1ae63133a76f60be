package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "jo@example.com" {
			t.Errorf("unexpected email: %s", body["email"])
		}

		json.NewEncoder(w).Encode(AuthResponse{
			Token: "srv-token",
			User:  UserPayload{Email: "jo@example.com", DisplayName: "Jo", Role: "customer"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), "jo@example.com", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "srv-token" {
		t.Errorf("token = %q, want srv-token", resp.Token)
	}
	if resp.User.DisplayName != "Jo" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLogin_RejectionIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "jo@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if IsNetworkError(err) {
		t.Error("rejection must not classify as a network error")
	}
}

func TestDo_UnreachableHostIsNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.ListProducts(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsNetworkError(err) {
		t.Errorf("expected NetworkError, got %T: %v", err, err)
	}
	if IsAPIError(err) {
		t.Error("transport failure must not classify as a rejection")
	}
}

func TestDo_TimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClientWithTimeout(server.URL, 20*time.Millisecond)
	_, err := client.ListProducts(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("expected NetworkError for timeout, got %v", err)
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		json.NewEncoder(w).Encode([]ProductPayload{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("tok-1")
	if _, err := client.ListProducts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateOrder_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req CreateOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(OrderPayload{
			ID: "srv-9", TotalCents: req.TotalCents, Status: "pending",
			Payment: req.Payment, CreatedAt: "2026-03-15", Lines: req.Lines,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	created, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Payment:    "card",
		TotalCents: 700,
		Lines:      []OrderLinePayload{{ProductID: 1, Quantity: 2, PriceAtMoment: 350}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "srv-9" || created.TotalCents != 700 {
		t.Errorf("created = %+v", created)
	}
}

func TestUploadProductImage_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "latte.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"image_ref": "images/latte.png"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ref, err := client.UploadProductImage(context.Background(), 7, "latte.png",
		strings.NewReader("fake-png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "images/latte.png" {
		t.Errorf("image ref = %q", ref)
	}
}

func TestAddCard_LimitRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "card limit exceeded"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.AddCard(context.Background(), AddCardRequest{Number: "4111111111111111"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "card limit exceeded" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
