package maps

import (
	"encoding/json"

	"github.com/peter-xbs/FSM/utils"
)

// PartialDocument is a typed view over a JSON document owned by another
// service. Fields the view does not declare survive a round trip.
type PartialDocument interface {
	raw() map[string]interface{}
	setRaw(map[string]interface{})
	MarshalJSON() ([]byte, error)
}

type BaseDocument struct {
	rawMap map[string]interface{}
}

func (doc *BaseDocument) raw() map[string]interface{} {
	return doc.rawMap
}

func (doc *BaseDocument) setRaw(raw map[string]interface{}) {
	doc.rawMap = raw
}

func (doc *BaseDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(doc.rawMap)
}

func FillFromMap(doc PartialDocument, from map[string]interface{}) error {
	if err := decode(from, doc); err != nil {
		return err
	}
	doc.setRaw(from)
	return nil
}

// CopyValues fills to from the raw document of from. The raw document of to
// only holds the fields to declares.
func CopyValues(from PartialDocument, to PartialDocument) error {
	if err := decode(from.raw(), to); err != nil {
		return err
	}
	cached := map[string]interface{}{}
	if err := mergeStruct(cached, to); err != nil {
		return err
	}
	to.setRaw(cached)
	return nil
}

// ApplyUpdates runs update on doc and writes the declared fields back into
// the raw document. A panic inside update is returned as an error.
func ApplyUpdates[T PartialDocument](doc T, update func(T)) (err error) {
	if update == nil {
		return nil
	}
	defer utils.RecoverWithError(&err)
	update(doc)

	raw := doc.raw()
	if raw == nil {
		raw = map[string]interface{}{}
		doc.setRaw(raw)
	}
	return mergeStruct(raw, doc)
}
