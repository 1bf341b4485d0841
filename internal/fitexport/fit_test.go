package fitexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/trainiq/internal/store"
)

func TestEncode(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	sess := &store.Session{
		ID:        "s1",
		Exercise:  "squat",
		StartedAt: start,
		EndedAt:   &end,
		TotalReps: 3,
		Calories:  1,
	}
	reps := []store.Rep{
		{Number: 1, Score: 90, DurationMs: 2500, CompletedAt: start.Add(10 * time.Second)},
		{Number: 2, Score: 85, DurationMs: 2400, CompletedAt: start.Add(14 * time.Second)},
		{Number: 3, Score: 80, DurationMs: 2600, CompletedAt: start.Add(18 * time.Second)},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sess, reps))
	require.NotZero(t, buf.Len())

	fit, err := decoder.New(bytes.NewReader(buf.Bytes())).Decode()
	require.NoError(t, err)

	counts := map[typedef.MesgNum]int{}
	for _, msg := range fit.Messages {
		counts[msg.Num]++

		switch msg.Num {
		case typedef.MesgNumSet:
			set := mesgdef.NewSet(&msg)
			assert.Equal(t, uint16(1), set.Repetitions)
			assert.Equal(t, []typedef.ExerciseCategory{typedef.ExerciseCategorySquat}, set.Category)
		case typedef.MesgNumSession:
			s := mesgdef.NewSession(&msg)
			assert.Equal(t, typedef.SportTraining, s.Sport)
			assert.Equal(t, typedef.SubSportStrengthTraining, s.SubSport)
			assert.Equal(t, uint32(120000), s.TotalElapsedTime)
		}
	}

	assert.Equal(t, 1, counts[typedef.MesgNumFileId])
	assert.Equal(t, 3, counts[typedef.MesgNumSet])
	assert.Equal(t, 1, counts[typedef.MesgNumLap])
	assert.Equal(t, 1, counts[typedef.MesgNumSession])
	assert.Equal(t, 1, counts[typedef.MesgNumActivity])
}

func TestEncode_OpenSessionUsesTotalTime(t *testing.T) {
	sess := &store.Session{Exercise: "plank", StartedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), TotalTime: 45}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sess, nil))

	fit, err := decoder.New(&buf).Decode()
	require.NoError(t, err)
	for _, msg := range fit.Messages {
		if msg.Num == typedef.MesgNumSession {
			assert.Equal(t, uint32(45000), mesgdef.NewSession(&msg).TotalElapsedTime)
		}
	}
}

func TestEncode_NilSession(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, nil, nil))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, typedef.ExerciseCategoryPushUp, Category("pushup"))
	assert.Equal(t, typedef.ExerciseCategoryBenchPress, Category("benchPress"))
	assert.Equal(t, typedef.ExerciseCategoryUnknown, Category("wallSit"))
}
