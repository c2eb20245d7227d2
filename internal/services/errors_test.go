package services_test

import (
	"errors"
	"strings"
	"testing"

	"vidscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFatalClassification(t *testing.T) {
	if !services.Fatal(services.Wrap(services.ErrModelLoad, "transcribe", "load", "no uvx", nil)) {
		t.Fatal("expected model load to be fatal")
	}
	if services.Fatal(services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "exit 1", nil)) {
		t.Fatal("expected external tool failure to be per-video")
	}
	if services.Fatal(nil) {
		t.Fatal("expected nil to be non-fatal")
	}
}

func TestCategory(t *testing.T) {
	cases := map[string]error{
		"":              nil,
		"model_load":    services.Wrap(services.ErrModelLoad, "", "", "x", nil),
		"validation":    services.Wrap(services.ErrValidation, "", "", "x", nil),
		"not_found":     services.Wrap(services.ErrNotFound, "", "", "x", nil),
		"external_tool": services.Wrap(services.ErrExternalTool, "", "", "x", nil),
		"transient":     errors.New("plain"),
	}
	for want, err := range cases {
		if got := services.Category(err); got != want {
			t.Fatalf("Category(%v) = %q, want %q", err, got, want)
		}
	}
}
