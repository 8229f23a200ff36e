package maps

import (
	"github.com/mitchellh/mapstructure"
)

const tagName = "json"

func decode(from map[string]interface{}, to interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  to,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(from)
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeStruct(dst map[string]interface{}, v interface{}) error {
	src, err := structToMap(v)
	if err != nil {
		return err
	}
	mergeMaps(dst, src)
	return nil
}

// mergeMaps writes src over dst. Nested objects present on both sides are
// merged key by key, everything else is replaced.
func mergeMaps(dst map[string]interface{}, src map[string]interface{}) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]interface{})
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}
