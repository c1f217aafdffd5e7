package compose

import (
	"fmt"
)

// PostData is the flat record older game posts were generated from. GPS is
// kept as the preformatted "lat, long" string those posts carried.
type PostData struct {
	CurrentTagNumber int    `json:"currentTagNumber"`
	ProofTagNumber   int    `json:"proofTagNumber"`
	Hint             string `json:"hint,omitempty"`
	Credit           string `json:"credit,omitempty"`
	FoundAt          string `json:"foundAt,omitempty"`
	GPS              string `json:"gps,omitempty"`
	DiscussionLink   string `json:"discussionLink,omitempty"`
}

// PostDescription renders "#N tag (hint: H) by CREDIT".
func PostDescription(d PostData) string {
	hint := ""
	if d.Hint != "" {
		hint = fmt.Sprintf("(hint: %s)", d.Hint)
	}
	return fmt.Sprintf("#%d tag %s by %s", d.CurrentTagNumber, hint, d.Credit)
}

// PostTitle renders "(GPS) {LINK}". The braces are written even without a link.
func PostTitle(d PostData) string {
	gps := ""
	if d.GPS != "" {
		gps = "(" + d.GPS + ")"
	}
	return fmt.Sprintf("%s {%s}", gps, d.DiscussionLink)
}

// ProofDescription renders "#N proof found at (PLACE) by CREDIT".
func ProofDescription(d PostData) string {
	found := ""
	if d.FoundAt != "" {
		found = fmt.Sprintf(" found at (%s)", d.FoundAt)
	}
	return fmt.Sprintf("#%d proof%s by %s", d.ProofTagNumber, found, d.Credit)
}

// ProofTitle renders "(GPS)".
func ProofTitle(d PostData) string {
	return "(" + d.GPS + ")"
}
