package actions_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"moviely/internal/actions"
	"moviely/internal/project"
	"moviely/internal/services"
)

func emptyState(t *testing.T) project.State {
	t.Helper()
	state, err := project.New(project.Settings{
		Name:       "test",
		Resolution: project.Resolution{Width: 1920, Height: 1080},
		FPS:        30,
	})
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}
	return state
}

func TestExecuteUnknownOperation(t *testing.T) {
	registry := actions.NewDefaultRegistry(actions.Dependencies{})
	state := emptyState(t)
	_, err := registry.Execute(context.Background(), "teleport_clip", state, actions.Args{})
	if !errors.Is(err, services.ErrUnknownAction) {
		t.Fatalf("expected unknown action error, got %v", err)
	}
	if state.ClipCount() != 0 {
		t.Fatal("failed execution changed the input state")
	}
}

func TestRegisterOverwritesExistingOperation(t *testing.T) {
	registry := actions.NewRegistry(nil)
	registry.Register("rename", func(_ context.Context, s project.State, _ actions.Args) (project.State, error) {
		settings := s.Settings()
		settings.Name = "first"
		return s.WithSettings(settings)
	})
	registry.Register("rename", func(_ context.Context, s project.State, _ actions.Args) (project.State, error) {
		settings := s.Settings()
		settings.Name = "second"
		return s.WithSettings(settings)
	})
	next, err := registry.Execute(context.Background(), "rename", emptyState(t), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if next.Name != "second" {
		t.Fatalf("expected last registration to win, got %q", next.Name)
	}
	if got := registry.List(); !reflect.DeepEqual(got, []string{"rename"}) {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestListIsSorted(t *testing.T) {
	registry := actions.NewDefaultRegistry(actions.Dependencies{})
	want := []string{"add_clip", "apply_effect", "crop_vertical", "move_clip", "remove_clip", "set_volume", "trim_clip"}
	if got := registry.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	op, err := registry.Describe("crop_vertical")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if op.Summary == "" || len(op.Params) != 2 {
		t.Fatalf("unexpected description %+v", op)
	}
	if _, err := registry.Describe("nope"); !errors.Is(err, services.ErrUnknownAction) {
		t.Fatalf("expected unknown action, got %v", err)
	}
}

func TestExecuteWrapsOperationErrorsKeepingKind(t *testing.T) {
	registry := actions.NewRegistry(nil)
	base := services.Wrap(services.ErrNotFound, "test", "", "missing", nil)
	registry.Register("fail", func(context.Context, project.State, actions.Args) (project.State, error) {
		return project.State{}, base
	})
	_, err := registry.Execute(context.Background(), "fail", emptyState(t), nil)
	if !errors.Is(err, services.ErrNotFound) || !errors.Is(err, base) {
		t.Fatalf("expected wrapped not-found error, got %v", err)
	}
	if got := err.Error(); len(got) < 5 || got[:5] != "fail:" {
		t.Fatalf("expected operation name prefix, got %q", got)
	}
}

func TestExecuteRejectsUnexpectedArguments(t *testing.T) {
	registry := actions.NewDefaultRegistry(actions.Dependencies{})
	_, err := registry.Execute(context.Background(), "remove_clip", emptyState(t), actions.Args{"clip": "x"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	registry := actions.NewDefaultRegistry(actions.Dependencies{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := registry.Execute(ctx, "add_clip", emptyState(t), actions.Args{
		"clip_type": "text", "source": "hi", "duration": 1.0,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseAssignments(t *testing.T) {
	args, err := actions.ParseAssignments([]string{
		"clip_type=text", "source=Hello World", "duration=3", "parameters={\"fade_in\":1}",
	})
	if err != nil {
		t.Fatalf("ParseAssignments: %v", err)
	}
	if args["source"] != "Hello World" || args["duration"] != 3.0 {
		t.Fatalf("unexpected args %#v", args)
	}
	if _, ok := args["parameters"].(map[string]any); !ok {
		t.Fatalf("expected object parameters, got %#v", args["parameters"])
	}
	if _, err := actions.ParseAssignments([]string{"novalue"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
