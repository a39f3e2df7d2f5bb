package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/api/users", "/api/users"},
		{"/api/users/alice", "/api/users/{username}"},
		{"/api/users/alice/to", "/api/users/{username}/to"},
		{"/api/users/alice/from", "/api/users/{username}/from"},
		{"/api/messages", "/api/messages"},
		{"/api/messages/42", "/api/messages/{id}"},
		{"/api/messages/42/read", "/api/messages/{id}/read"},
		{"/api/auth/login", "/api/auth/login"},
		{"/health", "/health"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got := NormalizePath(tc.path)
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}
