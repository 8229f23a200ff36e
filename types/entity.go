package types

type Entity struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Label string `json:"label" yaml:"label"`
}

// EntityStore looks entities up by id.
type EntityStore interface {
	Get(id string) (Entity, bool)
}

type Entities map[string]Entity

func (entities Entities) Get(id string) (Entity, bool) {
	ent, ok := entities[id]
	return ent, ok
}

func (entities Entities) Add(ent Entity) {
	entities[ent.ID] = ent
}
