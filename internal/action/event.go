package action

// Event is a tracker event in the dialogue engine's wire format.
type Event map[string]any

// Type returns the "event" discriminator.
func (e Event) Type() string {
	s, _ := e["event"].(string)
	return s
}

// SlotSet sets (or with a nil value, clears) a slot.
func SlotSet(name string, value any) Event {
	return Event{"event": "slot", "name": name, "value": value, "timestamp": nil}
}

// DeactivateLoop ends the active form.
func DeactivateLoop() Event {
	return Event{"event": "active_loop", "name": nil, "timestamp": nil}
}

// Response is one bot message: literal text or a named response template.
type Response struct {
	Text     string `json:"text,omitempty"`
	Template string `json:"response,omitempty"`
}

// Dispatcher collects the bot messages of one action run.
type Dispatcher struct {
	Responses []Response
}

// Utter sends text.
func (d *Dispatcher) Utter(text string) {
	d.Responses = append(d.Responses, Response{Text: text})
}

// UtterResponse sends the named response template.
func (d *Dispatcher) UtterResponse(name string) {
	d.Responses = append(d.Responses, Response{Template: name})
}
