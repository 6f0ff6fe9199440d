package form

import "strings"

// Mode is how the user picks the target tab.
type Mode string

const (
	ModeExisting Mode = "existing"
	ModeNew      Mode = "new"
)

// ParseMode maps a form value to a Mode, defaulting to ModeExisting.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeNew {
		return ModeNew
	}
	return ModeExisting
}

// Selection is an optional tab name. The zero value is "no selection".
type Selection struct {
	name string
	ok   bool
}

func NoSelection() Selection {
	return Selection{}
}

func Selected(name string) Selection {
	name = strings.TrimSpace(name)
	if name == "" {
		return Selection{}
	}
	return Selection{name: name, ok: true}
}

// Name returns the selected tab and whether there is one.
func (s Selection) Name() (string, bool) {
	return s.name, s.ok
}

func (s Selection) String() string {
	if !s.ok {
		return "<none>"
	}
	return s.name
}

// Selector resolves the active tab from the store's tab list and user input.
type Selector struct {
	Mode      Mode
	Available []string
	// Forced is set when existing mode was requested but there are no tabs.
	Forced bool
}

// NewSelector builds a selector for the requested mode. With no tabs in the
// store, choosing an existing one is impossible and the mode becomes ModeNew.
func NewSelector(available []string, requested Mode) Selector {
	s := Selector{Mode: requested, Available: available}
	if s.Mode != ModeNew {
		s.Mode = ModeExisting
	}
	if s.Mode == ModeExisting && len(available) == 0 {
		s.Mode = ModeNew
		s.Forced = true
	}
	return s
}

// CanChooseExisting reports whether there is at least one tab to pick.
func (s Selector) CanChooseExisting() bool {
	return len(s.Available) > 0
}

// Choose selects an existing tab. Names not in the list are no selection.
func (s Selector) Choose(name string) Selection {
	name = strings.TrimSpace(name)
	for _, tab := range s.Available {
		if tab == name {
			return Selected(tab)
		}
	}
	return NoSelection()
}

// Create selects a new tab from free text. Blank input is no selection.
func (s Selector) Create(name string) Selection {
	return Selected(name)
}

// Resolve applies the selector's mode to the chosen and typed values.
func (s Selector) Resolve(chosen, typed string) Selection {
	if s.Mode == ModeNew {
		return s.Create(typed)
	}
	return s.Choose(chosen)
}

// Default is the tab preselected in existing mode: the first one, if any.
func (s Selector) Default() Selection {
	if s.Mode != ModeExisting || len(s.Available) == 0 {
		return NoSelection()
	}
	return Selected(s.Available[0])
}
