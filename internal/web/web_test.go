package web

import (
	"bytes"
	"strings"
	"testing"
)

func TestTemplatesParseAndRender(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}

	for _, name := range []string{"index.html", "login.html", "signup.html", "upload.html", "profile.html", "watch.html", "error.html"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %s not defined", name)
		}
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"Title":    "Login",
		"Viewer":   nil,
		"Error":    "<b>Invalid credentials.</b>",
		"Success":  "",
		"Username": "alice",
	}
	if err := tmpl.ExecuteTemplate(&buf, "login.html", data); err != nil {
		t.Fatalf("render login: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "&lt;b&gt;Invalid credentials.&lt;/b&gt;") {
		t.Error("error message must be HTML-escaped")
	}
	if !strings.Contains(out, `value="alice"`) {
		t.Error("username should be kept in the form")
	}
	if !strings.Contains(out, `href="/signup"`) {
		t.Error("anonymous nav should link to signup")
	}
}
