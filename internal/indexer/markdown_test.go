package indexer

import (
	"strings"
	"testing"
)

func TestMarkdownText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty content",
			content: "",
			want:    "",
		},
		{
			name:    "heading and paragraph",
			content: "# CT Chest\n\nLungs are clear.\nNo effusion.",
			want:    "CT Chest\n\nLungs are clear. No effusion.",
		},
		{
			name:    "emphasis is flattened",
			content: "The **pleura** is *smooth*.",
			want:    "The pleura is smooth.",
		},
		{
			name:    "list items stay on consecutive lines",
			content: "## Mediastinum\n\n- lymph nodes\n- thymus\n\nTrailing paragraph.",
			want:    "Mediastinum\n\n- lymph nodes\n- thymus\n\nTrailing paragraph.",
		},
		{
			name:    "table rows",
			content: "| Region | Check |\n|---|---|\n| Lungs | nodules |\n| Pleura | effusion |\n",
			want:    "Region | Check\nLungs | nodules\nPleura | effusion",
		},
		{
			name:    "fenced code kept verbatim",
			content: "```\nW:1500 L:-600\n```\n",
			want:    "W:1500 L:-600",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownText([]byte(tt.content))
			if got != tt.want {
				t.Errorf("MarkdownText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownText_NoMarkupLeaks(t *testing.T) {
	content := "# Title\n\n> quoted **bold** text\n\n1. first\n2. second\n"
	got := MarkdownText([]byte(content))

	for _, marker := range []string{"#", "**", ">"} {
		if strings.Contains(got, marker) {
			t.Errorf("MarkdownText() leaked %q: %q", marker, got)
		}
	}
	if !strings.Contains(got, "quoted bold text") || !strings.Contains(got, "- first\n- second") {
		t.Errorf("MarkdownText() = %q", got)
	}
}
