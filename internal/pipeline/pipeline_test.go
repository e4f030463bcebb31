package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/moltwatch/censyscollect/internal/model"
)

// recordingStep records whether it executed and can return a fixed error.
type recordingStep struct {
	name     string
	err      error
	executed bool
}

func (s *recordingStep) Do(_ context.Context, _ *model.CollectionRun) error {
	s.executed = true
	return s.err
}

func (s *recordingStep) Name() string { return s.name }

// TestPipeline_Execute tests step orchestration.
func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		steps := []*recordingStep{
			{name: "first"},
			{name: "second"},
			{name: "third"},
		}
		p := New()
		for _, s := range steps {
			p.AddStep(s)
		}

		run := model.NewCollectionRun("q", "lab", nil)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, s := range steps {
			if !s.executed {
				t.Errorf("expected step %s executed", s.name)
			}
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &recordingStep{name: "failing", err: errors.New("boom")}
		after := &recordingStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		run := model.NewCollectionRun("q", "lab", nil)
		if err := p.Execute(context.Background(), run); err == nil {
			t.Fatal("expected error from failing step")
		}
		if after.executed {
			t.Error("expected later step skipped after error")
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		failing := &recordingStep{name: "failing", err: errors.New("boom")}
		after := &recordingStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		run := model.NewCollectionRun("q", "lab", nil)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !after.executed {
			t.Error("expected later step to run with continueOnError")
		}
	})

	t.Run("cancellation stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &recordingStep{name: "never"}
		p := New()
		p.AddStep(step)

		run := model.NewCollectionRun("q", "lab", nil)
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.executed {
			t.Error("expected step not executed after cancellation")
		}
		if run.ErrorNote == "" {
			t.Error("expected cancellation recorded in the run")
		}
	})

	t.Run("step names and count", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&recordingStep{name: "a"}, &recordingStep{name: "b"})

		if p.StepCount() != 2 {
			t.Errorf("got %d steps, expected 2", p.StepCount())
		}
		names := p.StepNames()
		if names[0] != "a" || names[1] != "b" {
			t.Errorf("unexpected step names: %v", names)
		}
	})
}
