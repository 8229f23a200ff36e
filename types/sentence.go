package types

import "strings"

type Tree struct {
	Root *Token
	// Tokens holds the non-root tokens, Tokens[i].ID == i+1.
	Tokens []*Token
}

func (tree *Tree) Token(id int) (*Token, bool) {
	if id == RootID {
		return tree.Root, tree.Root != nil
	}
	if id < 1 || id > len(tree.Tokens) {
		return nil, false
	}
	return tree.Tokens[id-1], true
}

// Sentence is a parsed sentence together with the entities it mentions.
type Sentence struct {
	Index    int
	Tree     *Tree
	Entities Entities
}

func (sent *Sentence) Text() string {
	var sb strings.Builder
	for _, t := range sent.Tree.Tokens {
		sb.WriteString(t.Word)
	}
	return sb.String()
}
