package diagram

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{
			name:    "simple flowchart",
			source:  "graph TD\nA-->B",
			wantErr: false,
		},
		{
			name:    "flowchart LR",
			source:  "flowchart LR\nStart --> End",
			wantErr: false,
		},
		{
			name:    "sequence diagram",
			source:  "sequenceDiagram\nAlice->>Bob: Hello",
			wantErr: false,
		},
		{
			name:    "class diagram",
			source:  "classDiagram\nAnimal <|-- Duck",
			wantErr: false,
		},
		{
			name:    "state diagram",
			source:  "stateDiagram-v2\n[*] --> Idle",
			wantErr: false,
		},
		{
			name:    "gantt chart",
			source:  "gantt\ntitle Plan",
			wantErr: false,
		},
		{
			name:    "journey",
			source:  "journey\ntitle Mon parcours",
			wantErr: false,
		},
		{
			name:    "fenced code markers",
			source:  "```graph TD\nA-->B```",
			wantErr: true,
		},
		{
			name:    "unknown header",
			source:  "pie\n\"a\": 1",
			wantErr: true,
		},
		{
			name:    "empty source",
			source:  "   ",
			wantErr: true,
		},
		{
			name:    "unbalanced brackets",
			source:  "graph TD\nA[Start --> B",
			wantErr: true,
		},
		{
			name:    "mismatched bracket kinds",
			source:  "graph TD\nA[Start} --> B",
			wantErr: true,
		},
		{
			name:    "leading whitespace accepted",
			source:  "  graph TD\nA-->B",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	source := "graph TD\n%% layout comment\nA[`Start`] --> B\n  %% another\nB --> C"
	got := Sanitize(source)

	if strings.Contains(got, "%%") {
		t.Errorf("Sanitize left a comment line in %q", got)
	}
	if strings.Contains(got, "`") {
		t.Errorf("Sanitize left a backtick in %q", got)
	}
	if !strings.Contains(got, "A[Start] --> B") {
		t.Errorf("Sanitize mangled node content: %q", got)
	}
}

func TestRenderSuccess(t *testing.T) {
	svg := "<svg>rendered</svg>"
	var gotBody string
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		gotBody = string(body)
		gotPath = r.URL.Path
		w.Write([]byte(svg))
	}))
	defer server.Close()

	service := NewService(server.URL)
	result, err := service.Render(context.Background(), "graph TD\nA-->B")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(result)
	if err != nil {
		t.Fatalf("Render did not return valid base64: %v", err)
	}
	if string(decoded) != svg {
		t.Errorf("Render returned %q, want %q", string(decoded), svg)
	}
	if gotPath != "/mermaid/svg" {
		t.Errorf("Render posted to %q, want /mermaid/svg", gotPath)
	}
	if gotBody != "graph TD\nA-->B" {
		t.Errorf("Render posted body %q", gotBody)
	}
}

func TestRenderInvalidSourceSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	service := NewService(server.URL)
	_, err := service.Render(context.Background(), "```graph TD\nA-->B```")
	if err == nil {
		t.Fatal("Render should fail on fenced source")
	}
	if called {
		t.Error("Render made a network call for invalid source")
	}
}

func TestRenderServerFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad diagram", http.StatusBadRequest)
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			service := NewService(server.URL)
			if _, err := service.Render(context.Background(), "graph TD\nA-->B"); err == nil {
				t.Error("Render should fail")
			}
		})
	}
}
