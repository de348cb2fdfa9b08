package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTrigger_PostsMeetingID(t *testing.T) {
	var got triggerRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	trigger := NewHTTPTrigger("email", ts.URL+"/trigger", time.Second)
	if err := trigger.Trigger(context.Background(), 77); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if got.MeetingID != 77 {
		t.Fatalf("unexpected meeting id %d", got.MeetingID)
	}
}

func TestHTTPTrigger_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	trigger := NewHTTPTrigger("tickets", ts.URL, time.Second)
	if err := trigger.Trigger(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
