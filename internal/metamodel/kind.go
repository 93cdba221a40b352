package metamodel

import "fmt"

// Kind classifies how instances of a type keep their identity.
type Kind int

const (
	// KindValue types are fully described by their decomposition.
	KindValue Kind = iota + 1
	// KindEntity types have persistent identity and are found by bookmark.
	KindEntity
	// KindViewModel types are transient projections whose bookmark key
	// carries their whole state.
	KindViewModel
	// KindSerializable types can only be captured as opaque bytes.
	KindSerializable
)

var kindNames = map[Kind]string{
	KindValue:        "value",
	KindEntity:       "entity",
	KindViewModel:    "viewmodel",
	KindSerializable: "serializable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q (want value, entity, viewmodel or serializable)", s)
}
