package model

import (
	"fmt"
	"strings"
)

// Window is a history lookback choice.
type Window string

const (
	Window6M  Window = "6M"
	Window1Y  Window = "1Y"
	Window3Y  Window = "3Y"
	Window5Y  Window = "5Y"
	Window10Y Window = "10Y"
)

// Windows lists every lookback in ascending length.
var Windows = []Window{Window6M, Window1Y, Window3Y, Window5Y, Window10Y}

var windowDays = map[Window]int{
	Window6M:  180,
	Window1Y:  365,
	Window3Y:  1095,
	Window5Y:  1825,
	Window10Y: 3650,
}

var windowLabels = map[Window]string{
	Window6M:  "6个月",
	Window1Y:  "1年",
	Window3Y:  "3年",
	Window5Y:  "5年",
	Window10Y: "10年",
}

// Days returns the number of calendar days the window covers.
func (w Window) Days() int { return windowDays[w] }

// Label returns the display name.
func (w Window) Label() string { return windowLabels[w] }

// ParseWindow accepts "6M", "1y", or a display name such as "3年".
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	for _, w := range Windows {
		if strings.EqualFold(s, string(w)) || s == w.Label() {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", s)
}
