// Package model defines the session form and its wire representation.
package model

import (
	"strings"
)

type SessionID string

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// FormState is the editable form. Tags hold the text exactly as typed.
// It is a value type: copies never share state.
type FormState struct {
	Title       string
	Tags        string
	ResourceURL string
	Status      Status
}

// EmptyForm is the form of a session that has never been saved.
func EmptyForm() FormState {
	return FormState{Status: StatusDraft}
}

// Record is the body exchanged with the persistence API.
type Record struct {
	ID          SessionID `json:"id,omitempty"`
	Title       string    `json:"title"`
	Tags        []string  `json:"tags"`
	ResourceURL string    `json:"resourceUrl"`
	Status      Status    `json:"status"`
}

// Record builds the wire body for f with normalized tags.
func (f FormState) Record(id SessionID) Record {
	status := f.Status
	if !status.Valid() {
		status = StatusDraft
	}
	return Record{
		ID:          id,
		Title:       f.Title,
		Tags:        ParseTags(f.Tags),
		ResourceURL: f.ResourceURL,
		Status:      status,
	}
}

// Form turns a loaded record back into its editable representation.
func (r Record) Form() FormState {
	status := r.Status
	if !status.Valid() {
		status = StatusDraft
	}
	return FormState{
		Title:       r.Title,
		Tags:        JoinTags(r.Tags),
		ResourceURL: r.ResourceURL,
		Status:      status,
	}
}

// ParseTags splits comma separated text, trimming entries and dropping
// empty ones. The result is never nil so it encodes as [].
func ParseTags(text string) []string {
	tags := []string{}
	for _, part := range strings.Split(text, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
