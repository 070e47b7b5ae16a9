package dialogue

import "strings"

// Sentinel directives the model may embed in plain text. They are
// stripped and translated into typed directives exactly once, right
// after the model call; nothing downstream ever sees raw tags.
const (
	tagSendMenuImage  = "[SEND_MENU_IMAGE]"
	tagAskFulfillment = "[ASK_FULFILLMENT]"
	tagHumanRequest   = "[HUMAN_REQUEST]"
)

type DirectiveKind int

const (
	DirectiveSendMenuImage DirectiveKind = iota
	DirectiveAskFulfillment
	DirectiveHumanRequest
)

// ModelResult is the typed outcome of one plain-text model reply: the
// cleaned customer-facing text plus any side-effect directives.
type ModelResult struct {
	Text       string
	Directives []DirectiveKind
}

// ParseModelText splits sentinel tags out of the raw model output.
func ParseModelText(raw string) ModelResult {
	result := ModelResult{Text: raw}

	for tag, kind := range map[string]DirectiveKind{
		tagSendMenuImage:  DirectiveSendMenuImage,
		tagAskFulfillment: DirectiveAskFulfillment,
		tagHumanRequest:   DirectiveHumanRequest,
	} {
		if strings.Contains(result.Text, tag) {
			result.Text = strings.ReplaceAll(result.Text, tag, "")
			result.Directives = append(result.Directives, kind)
		}
	}

	result.Text = strings.TrimSpace(result.Text)
	return result
}

// Has reports whether the result carries the given directive.
func (r ModelResult) Has(kind DirectiveKind) bool {
	for _, d := range r.Directives {
		if d == kind {
			return true
		}
	}
	return false
}
