package conll

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peter-xbs/FSM/types"
)

// Column layout of a token line. Entity columns are optional.
const (
	colID = iota
	colForm
	colTag
	colHead
	colDepRel
	colEntityID
	colEntityLabel

	minColumns = colDepRel + 1
)

const (
	emptyField = "_"
	RootWord   = "ROOT"
	RootTag    = "root"

	// CoordinationRelation marks a mention coordinated with its head mention.
	CoordinationRelation = "COO"
)

var ErrCyclicTree = errors.New("conll: dependency heads form a cycle")

type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("conll: line %d: %s", e.Line, e.Msg)
}

// ParseDocument splits text into blank-line separated sentences and builds a
// tree for each of them. Lines starting with '#' are comments.
func ParseDocument(text string) ([]types.Sentence, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var sentences []types.Sentence
	var block []string
	blockStart := 0
	lineNo := 0

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		sent, err := ParseSentence(block, blockStart)
		if err != nil {
			return err
		}
		sent.Index = len(sentences)
		sentences = append(sentences, sent)
		block = block[:0]
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#"):
			continue
		default:
			if len(block) == 0 {
				blockStart = lineNo
			}
			block = append(block, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return sentences, nil
}

// ParseSentence builds one sentence from its token lines. firstLine is the
// document line number of lines[0], used in error messages.
func ParseSentence(lines []string, firstLine int) (types.Sentence, error) {
	root := &types.Token{ID: types.RootID, Word: RootWord, Tag: RootTag}
	tokens := make([]*types.Token, len(lines))
	labels := make([]string, len(lines))

	for i, line := range lines {
		lineNo := firstLine + i
		fields := splitFields(line)
		if len(fields) < minColumns {
			return types.Sentence{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected at least %d columns, got %d", minColumns, len(fields))}
		}
		id, err := strconv.Atoi(fields[colID])
		if err != nil || id != i+1 {
			return types.Sentence{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("token id %q out of sequence", fields[colID])}
		}
		head, err := strconv.Atoi(fields[colHead])
		if err != nil || head < 0 || head > len(lines) {
			return types.Sentence{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("head %q out of range", fields[colHead])}
		}

		token := &types.Token{
			ID:     id,
			Word:   fields[colForm],
			Tag:    value(fields, colTag),
			Head:   head,
			DepRel: value(fields, colDepRel),
		}
		token.EntityID = value(fields, colEntityID)
		labels[i] = value(fields, colEntityLabel)
		tokens[i] = token
	}

	tree := &types.Tree{Root: root, Tokens: tokens}
	if err := checkAcyclic(tree); err != nil {
		return types.Sentence{}, fmt.Errorf("sentence at line %d: %w", firstLine, err)
	}

	for _, token := range tokens {
		head, _ := tree.Token(token.Head)
		if token.ID < head.ID {
			head.LeftChildren = append(head.LeftChildren, token)
		} else {
			head.RightChildren = append(head.RightChildren, token)
		}
	}

	entities := make(types.Entities)
	for i, token := range tokens {
		if !token.HasEntity() {
			continue
		}
		token.CoordinationSiblings = coordinatedEntities(token, nil)

		if ent, ok := entities[token.EntityID]; ok {
			// multi token mention
			ent.Text += token.Word
			entities[token.EntityID] = ent
			continue
		}
		label := labels[i]
		if label == "" {
			label = token.Tag
		}
		entities.Add(types.Entity{ID: token.EntityID, Text: token.Word, Label: label})
	}

	return types.Sentence{Tree: tree, Entities: entities}, nil
}

func coordinatedEntities(token *types.Token, ids []string) []string {
	for _, child := range token.Children() {
		if !strings.EqualFold(child.DepRel, CoordinationRelation) {
			continue
		}
		if child.HasEntity() && child.EntityID != token.EntityID {
			ids = append(ids, child.EntityID)
		}
		ids = coordinatedEntities(child, ids)
	}
	return ids
}

func checkAcyclic(tree *types.Tree) error {
	n := len(tree.Tokens)
	for _, token := range tree.Tokens {
		current := token
		for steps := 0; current.Head != types.RootID; steps++ {
			if steps >= n {
				return ErrCyclicTree
			}
			current = tree.Tokens[current.Head-1]
		}
	}
	return nil
}

func splitFields(line string) []string {
	if strings.Contains(line, "\t") {
		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	return strings.Fields(line)
}

func value(fields []string, col int) string {
	if col >= len(fields) || fields[col] == emptyField {
		return ""
	}
	return fields[col]
}
