package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ayusman/trainiq/internal/pose"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns preset pose", func(t *testing.T) {
		m := NewMockDetector()
		want := pose.StandingPose()
		m.SetPose(want)

		got, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Error("expected preset pose")
		}
	})

	t.Run("nil pose when nobody in frame", func(t *testing.T) {
		m := NewMockDetector()
		got, err := m.Detect(nil)
		if err != nil || got != nil {
			t.Errorf("Detect() = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("steps through sequence and repeats last", func(t *testing.T) {
		m := NewMockDetector()
		a, b := pose.SquatPose(170), pose.SquatPose(90)
		m.SetSequence(a, b)

		for i, want := range []*pose.Pose{a, b, b} {
			got, _ := m.Detect(nil)
			if got != want {
				t.Errorf("call %d returned wrong pose", i)
			}
		}
		if m.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", m.Calls())
		}
	})

	t.Run("loops sequence", func(t *testing.T) {
		m := NewMockDetector()
		a, b := pose.SquatPose(170), pose.SquatPose(90)
		m.SetSequence(a, b)
		m.SetLoop(true)

		for i, want := range []*pose.Pose{a, b, a, b} {
			got, _ := m.Detect(nil)
			if got != want {
				t.Errorf("call %d returned wrong pose", i)
			}
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		m := NewMockDetector()
		boom := errors.New("boom")
		m.SetError(boom)
		if _, err := m.Detect(nil); !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
	})
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	data := []byte{0xff, 0xd8, 0x01, 0x02}

	if err := writeFrame(&buf, data); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	out := buf.Bytes()
	if len(out) != 4+len(data) {
		t.Fatalf("expected %d bytes, got %d", 4+len(data), len(out))
	}
	if n := binary.BigEndian.Uint32(out[:4]); n != uint32(len(data)) {
		t.Errorf("length prefix = %d, want %d", n, len(data))
	}
	if !bytes.Equal(out[4:], data) {
		t.Error("payload mismatch")
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("pose", func(t *testing.T) {
		line := []byte(`{"pose":{"score":0.9,"landmarks":[{"x":0.1,"y":0.2,"z":-0.1,"visibility":0.8}]}}` + "\n")
		p, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil {
			t.Fatal("expected pose")
		}
		if p.Score != 0.9 {
			t.Errorf("score = %v, want 0.9", p.Score)
		}
		if got := p.Landmarks[pose.Nose]; got.X != 0.1 || got.Y != 0.2 || got.Z != -0.1 || got.Visibility != 0.8 {
			t.Errorf("nose = %+v", got)
		}
		if p.Landmarks[pose.LeftShoulder].Visibility != 0 {
			t.Error("missing landmarks should be zero valued")
		}
	})

	t.Run("nobody in frame", func(t *testing.T) {
		p, err := parseResponse([]byte(`{"pose":null}`))
		if err != nil || p != nil {
			t.Errorf("parseResponse() = %v, %v; want nil, nil", p, err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{`)); err == nil {
			t.Error("expected error")
		}
	})
}

