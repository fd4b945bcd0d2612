package composer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCall struct {
	holds   int32
	resumes int32
	holdErr error
}

func (f *fakeCall) Hold(ctx context.Context) error {
	atomic.AddInt32(&f.holds, 1)
	return f.holdErr
}

func (f *fakeCall) Resume(ctx context.Context) error {
	atomic.AddInt32(&f.resumes, 1)
	return nil
}

func newTestComposer(endpoint string) (*Composer, *time.Duration) {
	c := New(endpoint)
	var slept time.Duration
	c.sleep = func(d time.Duration) { slept += d }
	return c, &slept
}

func TestSubmit_HoldsDeliversWaitsResumes(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"txt":                q.Get("txt"),
			"sourceLanguageCode": q.Get("sourceLanguageCode"),
			"targetLanguageCode": q.Get("targetLanguageCode"),
			"contactId":          q.Get("contactId"),
		}
		_, _ = w.Write([]byte("2000"))
	}))
	defer srv.Close()

	c, slept := newTestComposer(srv.URL)
	call := &fakeCall{}
	if err := c.Submit(context.Background(), call, "please confirm your address", "contact-1", "es-US"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if call.holds != 1 {
		t.Fatalf("expected exactly one hold, got %d", call.holds)
	}
	if call.resumes != 1 {
		t.Fatalf("expected exactly one resume, got %d", call.resumes)
	}
	// 2000ms playback plus the 3000ms buffer.
	if *slept < 5*time.Second {
		t.Fatalf("resumed too early: waited only %v", *slept)
	}
	if gotQuery["txt"] != "please confirm your address" ||
		gotQuery["sourceLanguageCode"] != "en-US" ||
		gotQuery["targetLanguageCode"] != "es-US" ||
		gotQuery["contactId"] != "contact-1" {
		t.Fatalf("unexpected delivery query: %+v", gotQuery)
	}
}

func TestSubmit_DeliveryFailureStillResumesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, slept := newTestComposer(srv.URL)
	call := &fakeCall{}
	err := c.Submit(context.Background(), call, "hello", "contact-1", "es-US")
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if call.holds != 1 || call.resumes != 1 {
		t.Fatalf("expected one hold and one resume, got %d/%d", call.holds, call.resumes)
	}
	if *slept != 0 {
		t.Fatalf("should not wait after failed delivery, waited %v", *slept)
	}
}

func TestSubmit_NonNumericDurationStillResumesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-a-number"))
	}))
	defer srv.Close()

	c, _ := newTestComposer(srv.URL)
	call := &fakeCall{}
	if err := c.Submit(context.Background(), call, "hello", "contact-1", "es-US"); err == nil {
		t.Fatal("expected error for non-numeric duration")
	}
	if call.holds != 1 || call.resumes != 1 {
		t.Fatalf("expected one hold and one resume, got %d/%d", call.holds, call.resumes)
	}
}

func TestSubmit_ValidationFailsFast(t *testing.T) {
	c, _ := newTestComposer("http://example.invalid")
	call := &fakeCall{}

	if err := c.Submit(context.Background(), call, "   ", "contact-1", "es-US"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if err := c.Submit(context.Background(), call, "hello", "", "es-US"); !errors.Is(err, ErrNoActiveContact) {
		t.Fatalf("expected ErrNoActiveContact, got %v", err)
	}
	if call.holds != 0 || call.resumes != 0 {
		t.Fatalf("validation must not touch the call leg, got %d/%d", call.holds, call.resumes)
	}

	c2, _ := newTestComposer("")
	if err := c2.Submit(context.Background(), call, "hello", "contact-1", "es-US"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSubmit_HoldFailureDoesNotResume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1000"))
	}))
	defer srv.Close()

	c, _ := newTestComposer(srv.URL)
	call := &fakeCall{holdErr: errors.New("leg unavailable")}
	if err := c.Submit(context.Background(), call, "hello", "contact-1", "es-US"); err == nil {
		t.Fatal("expected hold error")
	}
	if call.resumes != 0 {
		t.Fatalf("resume must not run when hold never succeeded, got %d", call.resumes)
	}
}
