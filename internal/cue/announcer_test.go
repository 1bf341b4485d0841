package cue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/trainiq/internal/analysis"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Request
	seen chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{seen: make(chan struct{}, 16)}
}

func (s *recordingSink) Deliver(_ context.Context, req Request) {
	s.mu.Lock()
	s.got = append(s.got, req)
	s.mu.Unlock()
	s.seen <- struct{}{}
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func frame(at time.Duration, reps int, tr *analysis.Transition) analysis.FrameResult {
	return analysis.FrameResult{Timestamp: t0.Add(at), Exercise: "squat", Reps: reps, Transition: tr}
}

func TestMilestone(t *testing.T) {
	tests := map[int]string{
		0:  "",
		1:  "First rep done! Great start!",
		2:  "",
		5:  "5 reps! You're doing amazing!",
		10: "10 reps! Outstanding! Keep it up!",
		12: "",
		15: "15 reps! Fantastic work!",
		20: "20 reps! Fantastic work!",
	}
	for n, want := range tests {
		if got := Milestone(n); got != want {
			t.Errorf("Milestone(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		name      string
		res       analysis.FrameResult
		wantOK    bool
		wantEvent string
		wantText  string
	}{
		{"no transition", frame(0, 0, nil), false, "", ""},
		{"silent transition", frame(0, 0, &analysis.Transition{Changed: true}), false, "", ""},
		{"phase cue", frame(0, 0, &analysis.Transition{Changed: true, Cue: analysis.CueDescending}), true, EventPhase, analysis.CueDescending},
		{"first rep milestone", frame(0, 1, &analysis.Transition{RepDelta: 1, Cue: "Rep 1 completed!"}), true, EventRep, "First rep done! Great start!"},
		{"ordinary rep", frame(0, 3, &analysis.Transition{RepDelta: 1, Cue: "Rep 3 completed!"}), true, EventRep, "Rep 3 completed!"},
		{"stall", frame(0, 3, &analysis.Transition{Stalled: true, Cue: analysis.CueStalled}), true, EventStall, analysis.CueStalled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := CueFor(tt.res)
			if ok != tt.wantOK {
				t.Fatalf("CueFor() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if req.Event != tt.wantEvent || req.Text != tt.wantText {
				t.Errorf("CueFor() = (%q, %q), want (%q, %q)", req.Event, req.Text, tt.wantEvent, tt.wantText)
			}
			if req.Exercise != "squat" {
				t.Errorf("Exercise = %q, want squat", req.Exercise)
			}
		})
	}
}

func TestAnnouncer_Cooldown(t *testing.T) {
	a := NewAnnouncer(newRecordingSink(), 2*time.Second, nil)
	down := &analysis.Transition{Changed: true, Cue: analysis.CueDescending}

	if !a.Observe(frame(0, 0, down)) {
		t.Fatal("first cue should be queued")
	}
	if a.Observe(frame(time.Second, 0, down)) {
		t.Error("identical cue inside the cooldown should be muted")
	}
	if !a.Observe(frame(1500*time.Millisecond, 0, &analysis.Transition{Changed: true, Cue: analysis.CueAscending})) {
		t.Error("a different cue should not be muted")
	}
	if !a.Observe(frame(2500*time.Millisecond, 0, down)) {
		t.Error("identical cue after the cooldown should be queued")
	}

	a.Reset()
	if !a.Observe(frame(2600*time.Millisecond, 0, down)) {
		t.Error("Reset() should clear cooldowns")
	}
}

func TestAnnouncer_KeepsNewestPending(t *testing.T) {
	sink := newRecordingSink()
	a := NewAnnouncer(sink, time.Second, nil)

	a.Observe(frame(0, 0, &analysis.Transition{Cue: analysis.CueDescending}))
	a.Observe(frame(0, 1, &analysis.Transition{RepDelta: 1, Cue: "Rep 1 completed!"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	select {
	case <-sink.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("cue was never delivered")
	}
	cancel()
	<-done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 1 {
		t.Fatalf("delivered %d cues, want 1", len(sink.got))
	}
	if sink.got[0].Text != "First rep done! Great start!" {
		t.Errorf("delivered %q, want the newest cue", sink.got[0].Text)
	}
}

func TestPluginSink_Deliver(t *testing.T) {
	p := scriptPlugin(t, `cat > got.json; echo '{"success":true}'`)
	p.Manifest.Events = []string{EventRep}

	m := NewManager(t.TempDir(), nil)
	m.plugins[p.Manifest.Name] = p

	sink := &PluginSink{Manager: m, Executor: NewExecutor(5 * time.Second), Log: m.log}
	sink.Deliver(context.Background(), Request{Event: EventPhase, Text: "ignored"})
	sink.Deliver(context.Background(), Request{Event: EventRep, Text: "Rep 2 completed!"})

	data, err := os.ReadFile(filepath.Join(p.Path, "got.json"))
	if err != nil {
		t.Fatalf("plugin was not run for its event: %v", err)
	}
	if want := `"text":"Rep 2 completed!"`; !strings.Contains(string(data), want) {
		t.Errorf("plugin got %s, want it to contain %s", data, want)
	}
}
