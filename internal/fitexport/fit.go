// Package fitexport writes recorded workouts as Garmin FIT activity files.
package fitexport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/ayusman/trainiq/internal/store"
)

// Category maps a profile key to the FIT exercise category.
func Category(profileKey string) typedef.ExerciseCategory {
	switch profileKey {
	case "pushup":
		return typedef.ExerciseCategoryPushUp
	case "squat":
		return typedef.ExerciseCategorySquat
	case "plank":
		return typedef.ExerciseCategoryPlank
	case "deadlift":
		return typedef.ExerciseCategoryDeadlift
	case "lunge":
		return typedef.ExerciseCategoryLunge
	case "benchPress":
		return typedef.ExerciseCategoryBenchPress
	default:
		return typedef.ExerciseCategoryUnknown
	}
}

// Encode writes sess and its reps to w as a strength training activity with
// one active set per rep.
func Encode(w io.Writer, sess *store.Session, reps []store.Rep) error {
	if sess == nil {
		return errors.New("fitexport: session is nil")
	}

	start := sess.StartedAt.UTC()
	end := start.Add(time.Duration(sess.TotalTime * float64(time.Second)))
	if sess.EndedAt != nil {
		end = sess.EndedAt.UTC()
	}
	elapsedMs := uint32(end.Sub(start).Milliseconds())
	category := Category(sess.Exercise)

	fit := &proto.FIT{Messages: []proto.Message{}}

	fileID := mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(start)
	fit.Messages = append(fit.Messages, fileID.ToMesg(nil))

	for i, rep := range reps {
		done := rep.CompletedAt.UTC()
		setStart := done.Add(-time.Duration(rep.DurationMs) * time.Millisecond)

		set := mesgdef.NewSet(nil).
			SetTimestamp(done).
			SetStartTime(setStart).
			SetCategory([]typedef.ExerciseCategory{category}).
			SetSetType(typedef.SetTypeActive).
			SetRepetitions(1).
			SetMessageIndex(typedef.MessageIndex(i))
		if rep.DurationMs > 0 {
			set.SetDuration(uint32(rep.DurationMs))
		}
		fit.Messages = append(fit.Messages, set.ToMesg(nil))
	}

	lap := mesgdef.NewLap(nil).
		SetTimestamp(end).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetTotalElapsedTime(elapsedMs).
		SetTotalTimerTime(elapsedMs).
		SetMessageIndex(0)
	fit.Messages = append(fit.Messages, lap.ToMesg(nil))

	session := mesgdef.NewSession(nil).
		SetTimestamp(end).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetSubSport(typedef.SubSportStrengthTraining).
		SetTotalElapsedTime(elapsedMs).
		SetTotalTimerTime(elapsedMs).
		SetTotalCalories(uint16(sess.Calories)).
		SetNumLaps(1)
	fit.Messages = append(fit.Messages, session.ToMesg(nil))

	activity := mesgdef.NewActivity(nil).
		SetTimestamp(end).
		SetType(typedef.ActivityManual).
		SetNumSessions(1)
	fit.Messages = append(fit.Messages, activity.ToMesg(nil))

	if err := encoder.New(w).Encode(fit); err != nil {
		return fmt.Errorf("fitexport: encode: %w", err)
	}
	return nil
}
