package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peter-xbs/FSM/types"
	"gopkg.in/yaml.v3"
)

type renderFunc func(out io.Writer, responses map[string]types.RelationResponse) error

func rendererFor(format string, plain bool) (renderFunc, error) {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON, nil
	case "yaml", "yml":
		return renderYAML, nil
	case "markdown", "md":
		return func(out io.Writer, responses map[string]types.RelationResponse) error {
			return printMarkdown(out, relationsMarkdown(responses), plain)
		}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func renderJSON(out io.Writer, responses map[string]types.RelationResponse) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(responses)
}

func renderYAML(out io.Writer, responses map[string]types.RelationResponse) error {
	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	return encoder.Encode(responses)
}

func relationsMarkdown(responses map[string]types.RelationResponse) string {
	names := make([]string, 0, len(responses))
	for name := range responses {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		response := responses[name]
		fmt.Fprintf(&sb, "# %s\n\n", name)
		fmt.Fprintf(&sb, "Document `%s`, %d sentences, %d relations.\n\n", response.DocId, response.Sentences, len(response.Relations))
		if len(response.Relations) > 0 {
			sb.WriteString("| Sentence | Trigger | Receiver | Type |\n|---|---|---|---|\n")
			for _, rel := range response.Relations {
				fmt.Fprintf(&sb, "| %d | %s (%s) | %s (%s) | %s |\n",
					rel.Sentence,
					rel.Trigger.Text, rel.Trigger.Label,
					rel.Receiver.Text, rel.Receiver.Label,
					rel.Type)
			}
			sb.WriteString("\n")
		}
		for _, msg := range response.Errors {
			fmt.Fprintf(&sb, "> error: %s\n\n", msg)
		}
	}
	return sb.String()
}

func renderMarkdown(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}
