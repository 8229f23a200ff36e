package types

// RootID is the id of the synthetic token every tree hangs from.
const RootID = 0

// Token is a node of a dependency tree. Children are kept in surface order,
// split by the side of the head they appear on.
type Token struct {
	ID     int    `json:"id"`
	Word   string `json:"word"`
	Tag    string `json:"tag"`
	Head   int    `json:"head"`
	DepRel string `json:"deprel"`

	// EntityID is empty when the token does not mention an entity.
	EntityID string `json:"entity_id,omitempty"`

	LeftChildren  []*Token `json:"-"`
	RightChildren []*Token `json:"-"`

	// CoordinationSiblings are entity ids coordinated with this token's
	// mention and sharing its grammatical role.
	CoordinationSiblings []string `json:"coordination_siblings,omitempty"`
}

func (token *Token) HasEntity() bool {
	return token.EntityID != ""
}

func (token *Token) IsRoot() bool {
	return token.ID == RootID
}

// Children returns left and right children in surface order.
func (token *Token) Children() []*Token {
	children := make([]*Token, 0, len(token.LeftChildren)+len(token.RightChildren))
	children = append(children, token.LeftChildren...)
	return append(children, token.RightChildren...)
}

// Words returns the words of the given tokens.
func Words(tokens []*Token) []string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Word
	}
	return words
}
