package store

// builtinExercises is the catalogue a new database starts with.
var builtinExercises = []Exercise{
	{
		Name:         "Push-ups",
		Description:  "A classic upper body exercise that targets chest, shoulders, and triceps",
		Category:     "strength",
		MuscleGroups: []string{"chest", "shoulders", "triceps"},
		Difficulty:   "beginner",
		Instructions: []string{
			"Start in a plank position with hands slightly wider than shoulders",
			"Lower your body until chest nearly touches the floor",
			"Push back up to starting position",
			"Keep core tight throughout the movement",
		},
		ImageURL:   "/images/push-ups.jpg",
		ProfileKey: "pushup",
	},
	{
		Name:         "Squats",
		Description:  "A fundamental lower body exercise targeting glutes, quads, and hamstrings",
		Category:     "strength",
		MuscleGroups: []string{"glutes", "quadriceps", "hamstrings"},
		Difficulty:   "beginner",
		Instructions: []string{
			"Stand with feet shoulder-width apart",
			"Lower your body as if sitting back into a chair",
			"Keep knees behind toes and chest up",
			"Return to starting position by driving through heels",
		},
		ImageURL:   "/images/squats.jpg",
		ProfileKey: "squat",
	},
	{
		Name:         "Plank",
		Description:  "An isometric core exercise that builds stability and strength",
		Category:     "core",
		MuscleGroups: []string{"core", "shoulders", "glutes"},
		Difficulty:   "beginner",
		Instructions: []string{
			"Start in a push-up position",
			"Lower to forearms, keeping body in straight line",
			"Engage core and hold position",
			"Breathe normally while maintaining form",
		},
		ImageURL:   "/images/plank.jpg",
		ProfileKey: "plank",
	},
	{
		Name:         "Deadlifts",
		Description:  "A compound movement that works the entire posterior chain",
		Category:     "strength",
		MuscleGroups: []string{"hamstrings", "glutes", "lower back", "traps"},
		Difficulty:   "intermediate",
		Instructions: []string{
			"Stand with feet hip-width apart, bar over mid-foot",
			"Hinge at hips and knees to lower and grip the bar",
			"Keep chest up and back straight",
			"Drive hips forward to lift bar, keeping it close to body",
		},
		ImageURL:   "/images/deadlifts.jpg",
		ProfileKey: "deadlift",
	},
	{
		Name:         "Burpees",
		Description:  "A full-body cardio exercise combining squat, push-up, and jump",
		Category:     "cardio",
		MuscleGroups: []string{"full body"},
		Difficulty:   "intermediate",
		Instructions: []string{
			"Start standing, then squat down and place hands on floor",
			"Jump feet back into plank position",
			"Perform a push-up",
			"Jump feet back to squat position",
			"Jump up with arms overhead",
		},
		ImageURL:   "/images/burpees.jpg",
		ProfileKey: "pushup",
	},
}

// Seed fills an empty catalogue with the built-in exercises. It reports how
// many rows were inserted.
func (r *ExerciseRepository) Seed() (int, error) {
	n, err := r.Count()
	if err != nil || n > 0 {
		return 0, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i := range builtinExercises {
		e := builtinExercises[i]
		e.MuscleGroups = append([]string(nil), e.MuscleGroups...)
		e.Instructions = append([]string(nil), e.Instructions...)
		if err := insertExercise(tx, &e); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(builtinExercises), nil
}
