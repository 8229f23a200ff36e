package types

import "github.com/peter-xbs/FSM/utils"

type Hashable interface {
	GetHashCode() uint64
}

// HashID is the stable hex id of h used in responses and storage.
func HashID(h Hashable) string {
	return utils.HexHash(h.GetHashCode())
}
