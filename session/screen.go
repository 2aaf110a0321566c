package session

import (
	"fmt"
	"strings"
)

// Screen identifies which step of the configuration flow a session is on.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenHierarchy
	ScreenTags
	ScreenUpload
	ScreenSummary
)

var screenNames = map[Screen]string{
	ScreenWelcome:   "welcome",
	ScreenHierarchy: "hierarchy",
	ScreenTags:      "tags",
	ScreenUpload:    "upload",
	ScreenSummary:   "summary",
}

// Screens lists every screen in flow order.
var Screens = []Screen{ScreenWelcome, ScreenHierarchy, ScreenTags, ScreenUpload, ScreenSummary}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// Valid reports whether s is one of the defined screens.
func (s Screen) Valid() bool {
	_, ok := screenNames[s]
	return ok
}

func ParseScreen(name string) (Screen, error) {
	for screen, n := range screenNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return screen, nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

func (s Screen) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown screen %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	parsed, err := ParseScreen(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
