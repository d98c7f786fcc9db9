package domain

// Directive is a structured instruction extracted from free-form assistant
// text. Directives are transient: they are applied as side effects and never
// stored.
type Directive interface {
	directive()
}

// Navigate switches the dashboard to another screen.
type Navigate struct {
	Screen Screen
}

// SetUIFlag toggles a named settings flag. Name is passed through verbatim;
// the settings store ignores names it does not know.
type SetUIFlag struct {
	Name  string
	Value bool
}

// AddTask appends a checklist task.
type AddTask struct {
	Label string
}

// ScheduleEvent appends a calendar event.
type ScheduleEvent struct {
	Title string
	Date  string
	Time  string
}

func (Navigate) directive()      {}
func (SetUIFlag) directive()     {}
func (AddTask) directive()       {}
func (ScheduleEvent) directive() {}
