package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Engineering", "Engineering"},
		{"strips tags", "<b>Engineering</b>", "Engineering"},
		{"strips script", `<script>alert("x")</script>Sprint 12`, "Sprint 12"},
		{"trims whitespace", "  Roadmap  ", "Roadmap"},
		{"empty", "", ""},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
