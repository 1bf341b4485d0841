// Package tray provides the system tray menu for TrainIQ.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Exercise is one entry of the exercise submenu.
type Exercise struct {
	Key  string
	Name string
}

// Tray represents the system tray application.
type Tray struct {
	exercises []Exercise

	onToggle    func(enabled bool)
	onExercise  func(key string)
	onReset     func()
	onDashboard func()
	onQuit      func()

	enabled  bool
	exercise string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuStatus    *systray.MenuItem
	menuExercise  *systray.MenuItem
	exerciseItems map[string]*systray.MenuItem
}

// New creates a Tray offering exercises, with current selected and analysis enabled.
func New(exercises []Exercise, current string) *Tray {
	return &Tray{
		exercises: exercises,
		exercise:  current,
		enabled:   true,
	}
}

// OnToggle sets the callback for pausing and resuming analysis.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnExercise sets the callback for choosing an exercise.
func (t *Tray) OnExercise(fn func(key string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExercise = fn
}

// OnReset sets the callback for the reset session item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnDashboard sets the callback for opening the dashboard.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("TrainIQ")
	systray.SetTooltip("TrainIQ form coach")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(true), "Pause or resume analysis")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(statusTitle(0, 0), "Current session")
	t.menuStatus.Disable()

	t.menuExercise = systray.AddMenuItem(exerciseTitle(t.nameOf(t.exercise)), "Choose the exercise")
	t.exerciseItems = make(map[string]*systray.MenuItem, len(t.exercises))
	for _, e := range t.exercises {
		item := t.menuExercise.AddSubMenuItem(e.Name, e.Key)
		if e.Key == t.exercise {
			item.Check()
		}
		t.exerciseItems[e.Key] = item
		go func(key string, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleExercise(key)
			}
		}(e.Key, item)
	}
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset Session", "Record this session and start over")
	systray.AddSeparator()
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit TrainIQ")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.call(&t.onReset)
			case <-menuDashboard.ClickedCh:
				t.call(&t.onDashboard)
			case <-menuQuit.ClickedCh:
				t.call(&t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleExercise(key string) {
	t.mu.RLock()
	callback := t.onExercise
	t.mu.RUnlock()

	if callback != nil {
		callback(key)
	}
	t.SetExercise(key)
}

func (t *Tray) call(fn *func()) {
	t.mu.RLock()
	callback := *fn
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetExercise marks key as the current exercise.
func (t *Tray) SetExercise(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.exercise = key
	if t.menuExercise != nil {
		t.menuExercise.SetTitle(exerciseTitle(t.nameOf(key)))
	}
	for k, item := range t.exerciseItems {
		if k == key {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetStatus shows the rep count and latest score.
func (t *Tray) SetStatus(reps, score int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusTitle(reps, score))
	}
}

// Exercise returns the current exercise key.
func (t *Tray) Exercise() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.exercise
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tray) nameOf(key string) string {
	for _, e := range t.exercises {
		if e.Key == key {
			return e.Name
		}
	}
	return key
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Analysing"
	}
	return "○ Paused"
}

func statusTitle(reps, score int) string {
	return fmt.Sprintf("Reps: %d  Score: %d", reps, score)
}

func exerciseTitle(name string) string {
	return "Exercise: " + name
}
