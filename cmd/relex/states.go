package main

import (
	"fmt"
	"io"
	"strings"

	relfsm "github.com/peter-xbs/FSM/relation/fsm"
	"github.com/spf13/cobra"
)

func newStatesCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "states",
		Short: "Print the trigger chain transition table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMarkdown(cmd.OutOrStdout(), statesMarkdown(), plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print markdown without terminal styling")
	return cmd
}

func statesMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Trigger chain states\n\n")
	sb.WriteString("| State | Words | Next |\n|---|---|---|\n")
	for _, state := range relfsm.AllTriggerStates {
		if state.Terminal() {
			continue
		}
		edges, fallback := state.Edges()
		for _, edge := range edges {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", state, strings.Join(edge.Words, " "), edge.Dst)
		}
		fmt.Fprintf(&sb, "| %s | *other* | %s |\n", state, fallback)
	}
	sb.WriteString("\nTerminal states: ")
	var terminals []string
	for _, state := range relfsm.AllTriggerStates {
		if state.Terminal() {
			terminals = append(terminals, fmt.Sprintf("`%s`", state))
		}
	}
	sb.WriteString(strings.Join(terminals, ", "))
	sb.WriteString("\n")
	return sb.String()
}

func printMarkdown(out io.Writer, markdown string, plain bool) error {
	if plain {
		_, err := io.WriteString(out, markdown)
		return err
	}
	rendered, err := renderMarkdown(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
