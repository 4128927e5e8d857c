package services_test

import (
	"errors"
	"strings"
	"testing"

	"moviely/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "encode", "ffmpeg failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "encode", "ffmpeg failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestRenderKindsMatchRender(t *testing.T) {
	for _, marker := range []error{
		services.ErrEmptyProject,
		services.ErrMissingAsset,
		services.ErrBackendFailure,
		services.ErrInvalidEffect,
	} {
		err := services.Wrap(marker, "render", "", "", nil)
		if !errors.Is(err, services.ErrRender) {
			t.Fatalf("expected %v to match ErrRender", marker)
		}
	}
	if errors.Is(services.ErrEmptyProject, services.ErrMissingAsset) {
		t.Fatal("render kinds must stay distinct")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "project", "", "bad", nil), "validation"},
		{services.Wrap(services.ErrNotFound, "project", "", "missing", nil), "not_found"},
		{services.Wrap(services.ErrAsset, "project", "", "gone", nil), "asset"},
		{services.Wrap(services.ErrUnknownAction, "actions", "", "nope", nil), "unknown_action"},
		{services.Wrap(services.ErrEmptyProject, "render", "", "", nil), "empty_project"},
		{services.Wrap(services.ErrMissingAsset, "render", "", "", nil), "missing_asset"},
		{services.Wrap(services.ErrBackendFailure, "render", "", "", nil), "backend_failure"},
		{services.Wrap(services.ErrInvalidEffect, "render", "", "", nil), "invalid_effect"},
		{services.Wrap(services.ErrRender, "render", "", "", nil), "render"},
		{services.Wrap(services.ErrStorage, "store", "", "", nil), "storage"},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{services.Wrap(services.ErrExternalTool, "deps", "", "", nil), "external_tool"},
		{services.Wrap(services.ErrSearch, "mediasearch", "", "", nil), "search"},
		{errors.New("plain"), "internal"},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
