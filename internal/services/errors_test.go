package services_test

import (
	"errors"
	"strings"
	"testing"

	"warble/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrBackendFailure, "fetch", "download", "yt-dlp failed", cause)

	if !errors.Is(err, services.ErrBackendFailure) {
		t.Fatalf("expected backend failure marker, got: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive, got: %v", err)
	}
	for _, want := range []string{"fetch", "download", "yt-dlp failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestWrapDefaultsToBackendFailure(t *testing.T) {
	err := services.Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, services.ErrBackendFailure) {
		t.Fatalf("expected default marker, got: %v", err)
	}
}

func TestUserMessageNeverLeaksDetail(t *testing.T) {
	err := services.Wrap(services.ErrBackendFailure, "fetch", "download", "secret internal path /tmp/x", nil)
	msg := services.UserMessage(err)
	if strings.Contains(msg, "/tmp/x") {
		t.Fatalf("user message leaked internal detail: %q", msg)
	}
	if msg == "" {
		t.Fatal("expected non-empty user message")
	}
}

func TestUserMessagePerMarker(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.ErrInvalidSelection, "choose"},
		{services.ErrTransportRejected, "delivery"},
		{services.ErrBackendFailure, "fetch"},
		{errors.New("unknown"), "something"},
	}
	for _, tc := range cases {
		if got := services.UserMessage(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("UserMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}
