package camera

import "testing"

func run(t *testing.T, tr *Transition, maxFrames int) int {
	t.Helper()
	for i := 1; i <= maxFrames; i++ {
		if tr.Step(1.0 / 60) {
			return i
		}
	}
	t.Fatalf("transition still %v after %d frames", tr.State(), maxFrames)
	return 0
}

func TestTransitionNavigatesOnce(t *testing.T) {
	var got []string
	tr := NewTransition(OverviewPose(), DefaultTransitionParams(), func(d string) { got = append(got, d) })

	if !tr.Start(FocusedPose(), "owner-a") {
		t.Fatal("Start refused from idle")
	}
	if tr.State() != Animating {
		t.Fatalf("state = %v", tr.State())
	}
	if tr.Start(OverviewPose(), "owner-b") {
		t.Error("Start accepted while animating")
	}

	frames := run(t, tr, 1000)
	if frames < 2 {
		t.Errorf("completed in %d frames, want a visible flight", frames)
	}
	if len(got) != 1 || got[0] != "owner-a" {
		t.Fatalf("navigations = %v, want [owner-a]", got)
	}
	if tr.Pose() != FocusedPose() || tr.State() != Idle || tr.Destination() != "" {
		t.Errorf("after completion pose=%v state=%v dest=%q", tr.Pose(), tr.State(), tr.Destination())
	}

	for i := 0; i < 10; i++ {
		tr.Step(1.0 / 60)
	}
	if len(got) != 1 {
		t.Errorf("navigation fired again: %v", got)
	}
}

func TestTransitionWithoutDestination(t *testing.T) {
	calls := 0
	tr := NewTransition(FocusedPose(), DefaultTransitionParams(), func(string) { calls++ })
	tr.Start(OverviewPose(), "")
	run(t, tr, 1000)
	if calls != 0 {
		t.Errorf("return flight navigated %d times", calls)
	}
	if tr.Pose() != OverviewPose() {
		t.Errorf("pose = %v", tr.Pose())
	}
}

func TestTransitionStepMovesTowardTarget(t *testing.T) {
	tr := NewTransition(OverviewPose(), DefaultTransitionParams(), nil)
	tr.Start(FocusedPose(), "x")
	start := OverviewPose().Position.Sub(FocusedPose().Position).Len()
	tr.Step(1.0 / 60)
	after := tr.Pose().Position.Sub(FocusedPose().Position).Len()
	want := start * 0.93
	if d := after - want; d > 1e-4 || d < -1e-4 {
		t.Errorf("distance after one frame = %v, want %v", after, want)
	}
}

func TestIdleStepIsNoop(t *testing.T) {
	tr := NewTransition(OverviewPose(), DefaultTransitionParams(), func(string) { t.Error("navigated while idle") })
	if tr.Step(1) {
		t.Error("idle step reported completion")
	}
	if tr.Pose() != OverviewPose() {
		t.Error("idle step moved the camera")
	}
}

func TestFrameRateIndependentFlight(t *testing.T) {
	p := DefaultTransitionParams()
	p.FrameRateIndependent = true

	a := NewTransition(OverviewPose(), p, nil)
	a.Start(FocusedPose(), "")
	a.Step(2.0 / 60)

	b := NewTransition(OverviewPose(), p, nil)
	b.Start(FocusedPose(), "")
	b.Step(1.0 / 60)
	b.Step(1.0 / 60)

	da := a.Pose().Position.Sub(FocusedPose().Position).Len()
	db := b.Pose().Position.Sub(FocusedPose().Position).Len()
	if d := da - db; d > 1e-3 || d < -1e-3 {
		t.Errorf("one 2-frame step left %v, two 1-frame steps left %v", da, db)
	}
}

func TestRedirectDropsNavigation(t *testing.T) {
	var got []string
	tr := NewTransition(OverviewPose(), DefaultTransitionParams(), func(d string) { got = append(got, d) })
	tr.Start(FocusedPose(), "owner-a")
	tr.Step(1.0 / 60)
	tr.Step(1.0 / 60)

	tr.Redirect(OverviewPose())
	if tr.State() != Animating || tr.Target() != OverviewPose() || tr.Destination() != "" {
		t.Fatalf("after Redirect state=%v target=%v dest=%q", tr.State(), tr.Target(), tr.Destination())
	}
	run(t, tr, 1000)
	if len(got) != 0 {
		t.Errorf("redirected flight navigated: %v", got)
	}
	if tr.Pose() != OverviewPose() {
		t.Errorf("pose = %v, want overview", tr.Pose())
	}
}
