package service

import (
	"sort"
	"time"
)

type EventWindow struct {
	Event string    `json:"event"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w EventWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// EventSchedule 固定时间窗口，当前活动只由 now 决定
type EventSchedule struct {
	windows []EventWindow
}

func NewEventSchedule(ws []EventWindow) EventSchedule {
	cp := append([]EventWindow(nil), ws...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Start.Before(cp[j].Start) })
	return EventSchedule{windows: cp}
}

// Active 窗口重叠时取最早开始的那个
func (s EventSchedule) Active(now time.Time) (EventWindow, bool) {
	for _, w := range s.windows {
		if w.Contains(now) {
			return w, true
		}
	}
	return EventWindow{}, false
}

func (s EventSchedule) Find(event string) (EventWindow, bool) {
	for _, w := range s.windows {
		if w.Event == event {
			return w, true
		}
	}
	return EventWindow{}, false
}

func (s EventSchedule) Windows() []EventWindow { return append([]EventWindow(nil), s.windows...) }
