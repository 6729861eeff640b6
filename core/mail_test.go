package core

import (
	"strings"
	"testing"
)

func TestEmailMessage_Render(t *testing.T) {
	type welcomeData struct{ Username string }

	tests := []struct {
		name      string
		msg       EmailMessage
		wantText  []string
		wantHTML  []string
		wantEmpty bool
		wantErr   bool
	}{
		{
			name: "welcome template",
			msg:  EmailMessage{TemplateName: "welcome", TemplateData: welcomeData{Username: "<alice>"}},
			wantText: []string{
				"Hi <alice>,",
				"http://localhost:5173/dashboard",
				"The Learn-Scope team",
			},
			wantHTML: []string{
				"Hi &lt;alice&gt;,",
				`<a href="http://localhost:5173/dashboard">`,
			},
		},
		{
			name:     "plain body",
			msg:      EmailMessage{BodyStr: "hello"},
			wantText: []string{"hello"},
		},
		{name: "unknown template", msg: EmailMessage{TemplateName: "nope"}, wantEmpty: true},
		{name: "missing data", msg: EmailMessage{TemplateName: "welcome", TemplateData: struct{}{}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			err := msg.Render("http://localhost:5173")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Render() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantEmpty && msg.HasContent() {
				t.Errorf("Render() content = %q / %q, want none", msg.TextContent, msg.HTMLContent)
			}
			for _, want := range tt.wantText {
				if !strings.Contains(msg.TextContent, want) {
					t.Errorf("TextContent = %q, want it to contain %q", msg.TextContent, want)
				}
			}
			for _, want := range tt.wantHTML {
				if !strings.Contains(msg.HTMLContent, want) {
					t.Errorf("HTMLContent = %q, want it to contain %q", msg.HTMLContent, want)
				}
			}
		})
	}
}
