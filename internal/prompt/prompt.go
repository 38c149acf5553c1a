// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt composes the system prompts for the general research
// assistant and the per-paper assistant.
package prompt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/knowledge"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// FallbackDisclaimer marks a paper prompt built from metadata alone.
const FallbackDisclaimer = "No detailed summary of this paper is available to you."

// LengthPolicy is the response-length instruction carried by every prompt.
const LengthPolicy = "Keep every answer short: 3-4 sentences, academic but accessible."

var funcs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

var paperTmpl = template.Must(template.New("paper").Funcs(funcs).Parse(`You are an AI research assistant helping users understand a specific academic paper.

Paper Details:
Title: {{.Paper.Title}}
Authors: {{.Paper.Authors}}
Journal/Status: {{.Paper.Journal}}
Year: {{.Paper.Year}}
Research Areas: {{join .Areas ", "}}
{{- if .Paper.Status}}
Status: {{.Paper.Status}}
{{- end}}
{{if .Block}}
Research Summary:
{{.Block}}
Your role:
- Answer questions about this paper using only the research summary above
- Explain the methodology, findings, and implications in clear language
- Quote the reported statistics exactly as given
- If asked about something the summary does not cover, say that the full paper would need to be consulted
{{- else}}
{{.Disclaimer}}
You know only the details listed above. If asked about specific findings, methodology, data, or statistics, say that you do not have that information and that the full paper should be consulted. Never invent findings or numbers.

Your role:
- Explain what the paper is likely about based on its title and research areas
- Discuss how it connects to typical research in these fields
{{- end}}
{{- if .Contexts}}

Research Context:
{{- range .Contexts}}
{{.}}
{{- end}}
{{- end}}

{{.Policy}} Be honest about the limits of what you know about this paper.
`))

var generalTmpl = template.Must(template.New("general").Funcs(funcs).Parse(`You are an AI research assistant for an academic researcher specializing in:
{{- range .Areas}}
- {{.}}
{{- end}}

Published Research:
{{- range $i, $r := .Records}}
{{inc $i}}. {{$r.Title}} ({{$r.Journal}}, {{$r.Year}})
{{- end}}

Your role:
- Summarize research themes and connections between the papers listed above
- Answer questions about these research areas
- If asked about a specific paper, describe it from its title and themes only
- Never claim knowledge of findings beyond the material listed here

{{.Policy}} Be professional, knowledgeable, and helpful.
`))

// Composer builds system prompts from a knowledge source and the
// publications catalog, whose topics provide labels and context sentences.
type Composer struct {
	source       knowledge.Source
	publications types.Catalog
}

// NewComposer returns a Composer. source may be nil, in which case every
// paper prompt takes the metadata-only path.
func NewComposer(source knowledge.Source, publications types.Catalog) *Composer {
	return &Composer{source: source, publications: publications}
}

// Paper composes the per-paper prompt. A knowledge block whose title equals
// p.Title exactly is embedded in full; otherwise the prompt carries only the
// declared metadata and FallbackDisclaimer.
func (c *Composer) Paper(ctx context.Context, p types.PaperRef) (string, error) {
	data := struct {
		Paper      types.PaperRef
		Areas      []string
		Block      string
		Disclaimer string
		Contexts   []string
		Policy     string
	}{
		Paper:      p,
		Disclaimer: FallbackDisclaimer,
		Contexts:   catalog.TopicContexts(c.publications, p.Categories),
		Policy:     LengthPolicy,
	}
	for _, key := range p.Categories {
		data.Areas = append(data.Areas, catalog.TopicLabel(c.publications, key))
	}

	if c.source != nil {
		b, ok, err := c.source.Lookup(ctx, p.Title)
		if err != nil {
			return "", fmt.Errorf("looking up knowledge for %q: %w", p.Title, err)
		}
		if ok {
			data.Block = knowledge.Format(b)
		}
	}

	return render(paperTmpl, data)
}

// General composes the research-assistant prompt listing every publication.
func (c *Composer) General() (string, error) {
	data := struct {
		Areas   []string
		Records []types.PaperRef
		Policy  string
	}{Policy: LengthPolicy}

	for _, t := range c.publications.Topics {
		data.Areas = append(data.Areas, catalog.TopicLabel(c.publications, t.Key))
	}
	for _, r := range c.publications.Records {
		data.Records = append(data.Records, r.PaperRef())
	}

	return render(generalTmpl, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
