// Package action implements the custom actions and form validators called
// by the dialogue engine over its action-server webhook.
package action

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Entity is one extracted entity of a user message.
type Entity struct {
	Entity string `json:"entity"`
	Value  any    `json:"value"`
}

// Message is the latest user message as seen by the dialogue engine.
type Message struct {
	Text     string         `json:"text"`
	Intent   map[string]any `json:"intent,omitempty"`
	Entities []Entity       `json:"entities"`
}

// Loop names the active form, if any.
type Loop struct {
	Name string `json:"name"`
}

// Tracker is the conversation state sent with every action call.
type Tracker struct {
	SenderID      string         `json:"sender_id"`
	Slots         map[string]any `json:"slots"`
	LatestMessage Message        `json:"latest_message"`
	ActiveLoop    *Loop          `json:"active_loop,omitempty"`
	Events        []Event        `json:"events,omitempty"`
}

// Slot returns the slot value as text; unset slots read as "".
func (t *Tracker) Slot(name string) string {
	return stringify(t.Slots[name])
}

// LatestEntity returns the first value of entity in the latest message.
func (t *Tracker) LatestEntity(name string) string {
	for _, e := range t.LatestMessage.Entities {
		if e.Entity == name {
			return stringify(e.Value)
		}
	}
	return ""
}

// EntityOrSlot prefers a freshly extracted entity over the stored slot.
func (t *Tracker) EntityOrSlot(name string) string {
	if v := t.LatestEntity(name); v != "" {
		return v
	}
	return t.Slot(name)
}

// InLoop reports whether a form is currently active.
func (t *Tracker) InLoop() bool {
	return t.ActiveLoop != nil && t.ActiveLoop.Name != ""
}

// SlotsToValidate returns the slots set since the last user message, in
// event order. Without an event log every filled slot is returned, sorted
// by name.
func (t *Tracker) SlotsToValidate() []SlotValue {
	if len(t.Events) == 0 {
		var out []SlotValue
		for name, v := range t.Slots {
			if v != nil {
				out = append(out, SlotValue{Name: name, Value: v})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}

	var recent []SlotValue
	for i := len(t.Events) - 1; i >= 0; i-- {
		e := t.Events[i]
		if e.Type() == "user" {
			break
		}
		if e.Type() == "slot" {
			name, _ := e["name"].(string)
			recent = append([]SlotValue{{Name: name, Value: e["value"]}}, recent...)
		}
	}
	return recent
}

// UserTexts lists what the user said, oldest first.
func (t *Tracker) UserTexts() []string {
	var texts []string
	for _, e := range t.Events {
		if e.Type() != "user" {
			continue
		}
		if text, ok := e["text"].(string); ok && text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// SlotValue is a slot name with its raw value.
type SlotValue struct {
	Name  string
	Value any
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
