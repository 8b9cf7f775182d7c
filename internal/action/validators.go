package action

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"
)

// slotRule validates one slot value; returning nil clears the slot.
type slotRule func(d *Dispatcher, value string) any

// FormValidator re-sets every slot filled since the last user message,
// normalised by the form's rules. Slots without a rule pass through.
type FormValidator struct {
	name  string
	rules map[string]slotRule
}

func (v *FormValidator) Name() string { return v.name }

func (v *FormValidator) Run(_ context.Context, d *Dispatcher, t *Tracker) []Event {
	var events []Event
	for _, s := range t.SlotsToValidate() {
		rule, ok := v.rules[s.Name]
		if !ok {
			events = append(events, SlotSet(s.Name, s.Value))
			continue
		}
		events = append(events, SlotSet(s.Name, rule(d, stringify(s.Value))))
	}
	return events
}

func orderIDRule(invalid string) slotRule {
	return func(d *Dispatcher, value string) any {
		if utf8.RuneCountInString(value) >= 3 {
			d.UtterResponse(utterAskEmail)
			return value
		}
		d.Utter(invalid)
		return nil
	}
}

// ValidEmail is the loose check the forms apply: an "@" and a ".".
func ValidEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

func emailRule(d *Dispatcher, value string) any {
	if ValidEmail(value) {
		return value
	}
	d.Utter("Please provide a valid email address.")
	return nil
}

var knownBrands = []string{
	"sony", "apple", "bose", "sennheiser", "jbl", "audio-technica",
	"samsung", "beats", "anker", "jabra", "any", "no preference",
}

func brandRule(_ *Dispatcher, value string) any {
	lower := strings.ToLower(value)
	if value != "" && (slices.Contains(knownBrands, lower) || strings.Contains(lower, "any") || strings.Contains(lower, "no")) {
		return value
	}
	return "any"
}

var priceKeywords = []string{"under", "$", "budget", "cheap", "expensive", "premium", "-"}

func priceRangeRule(_ *Dispatcher, value string) any {
	if value != "" && containsAny(strings.ToLower(value), priceKeywords) {
		return value
	}
	return "any"
}

var productTypes = []string{"over-ear", "in-ear", "on-ear", "any"}

func productTypeRule(_ *Dispatcher, value string) any {
	if value != "" && containsAny(strings.ToLower(value), productTypes) {
		return value
	}
	return "any"
}

func featuresRule(_ *Dispatcher, value string) any {
	if value != "" {
		return value
	}
	return "any"
}

// Unrecognised topics are kept as typed.
func complaintTopicRule(_ *Dispatcher, value string) any {
	if value == "" {
		return nil
	}
	return value
}

func complaintDescriptionRule(d *Dispatcher, value string) any {
	if utf8.RuneCountInString(value) >= 10 {
		return value
	}
	d.Utter("Please provide more details about your complaint (at least 10 characters).")
	return nil
}

func searchQueryRule(d *Dispatcher, value string) any {
	if utf8.RuneCountInString(value) >= 2 {
		return value
	}
	d.Utter("Please provide a search term (at least 2 characters).")
	return nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func formValidators() []Action {
	return []Action{
		&FormValidator{name: "validate_order_tracking_form", rules: map[string]slotRule{
			"order_id":   orderIDRule("Please provide a valid order ID (at least 3 characters)."),
			"user_email": emailRule,
		}},
		&FormValidator{name: "validate_recommendation_form", rules: map[string]slotRule{
			"preferred_brand": brandRule,
			"price_range":     priceRangeRule,
			"product_type":    productTypeRule,
			"features":        featuresRule,
		}},
		&FormValidator{name: "validate_complaint_form", rules: map[string]slotRule{
			"order_id":              orderIDRule("Please provide a valid order ID."),
			"user_email":            emailRule,
			"complaint_topic":       complaintTopicRule,
			"complaint_description": complaintDescriptionRule,
		}},
		&FormValidator{name: "validate_search_form", rules: map[string]slotRule{
			"search_query": searchQueryRule,
		}},
	}
}
