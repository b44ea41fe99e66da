package models

import (
	"fmt"
	"strings"
)

// CoursePart is one section of a generated course. The diagram fields travel
// on the part itself: mermaid_syntax is the LLM-produced source and
// img_base64 the rendered image, empty when rendering was skipped or failed.
type CoursePart struct {
	IDPart            string `json:"id_part"`
	IDSchema          string `json:"id_schema"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	SchemaDescription string `json:"schema_description"`
	MermaidSyntax     string `json:"mermaid_syntax"`
	ImgBase64         string `json:"img_base64"`
}

func (p *CoursePart) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("course part: empty title")
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("course part %q: empty content", p.Title)
	}
	return nil
}

// CourseOutput is the final generated course artifact.
type CourseOutput struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Parts []CoursePart `json:"parts"`
}

func (o *CourseOutput) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("course output: missing id")
	}
	if len(o.Parts) == 0 {
		return fmt.Errorf("course output: at least one part is required")
	}
	for i := range o.Parts {
		if err := o.Parts[i].Validate(); err != nil {
			return fmt.Errorf("course output part %d: %w", i, err)
		}
	}
	return nil
}

// ValidatePartCount checks the part count against the band implied by the
// requested level of detail.
func (o *CourseOutput) ValidatePartCount(levelDetail string) error {
	min, max := PartCountBounds(levelDetail)
	n := len(o.Parts)
	if n < min {
		return fmt.Errorf("course output: %d parts is below the %s minimum of %d", n, levelDetail, min)
	}
	if max > 0 && n > max {
		return fmt.Errorf("course output: %d parts exceeds the %s maximum of %d", n, levelDetail, max)
	}
	return nil
}
