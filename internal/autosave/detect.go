package autosave

import (
	"strings"

	"github.com/debemdeboas/session-editor/internal/model"
)

// HasChanged compares the form to the loaded snapshot field by field. Tags
// are compared as typed. Without a snapshot nothing counts as changed.
func HasChanged(current model.FormState, reference *model.FormState) bool {
	if reference == nil {
		return false
	}
	return current.Title != reference.Title ||
		current.Tags != reference.Tags ||
		current.ResourceURL != reference.ResourceURL ||
		current.Status != reference.Status
}

// IsEligible decides whether a changed form may be auto-saved. Status is not
// checked: the executor always saves a draft.
func IsEligible(current model.FormState, changed bool) bool {
	return changed &&
		strings.TrimSpace(current.Title) != "" &&
		strings.TrimSpace(current.ResourceURL) != ""
}
