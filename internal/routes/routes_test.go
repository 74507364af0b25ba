package routes

import "testing"

func TestPattern(t *testing.T) {
	tests := []struct {
		method, resource, route string
		expected                string
	}{
		{"GET", "/sessions", SessionByID, "GET /sessions/{id}"},
		{"POST", "sessions/", SaveDraft, "POST /sessions/save-draft"},
		{"POST", "/api/sessions", Publish, "POST /api/sessions/publish"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Pattern(tt.method, tt.resource, tt.route); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
