package structure

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"projgen/internal/analyze"
)

// Identity is the content hash of a structure's shape.
type Identity [16]byte

// String returns the identity in hex.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first eight hex digits, for log lines.
func (id Identity) Short() string {
	return id.String()[:8]
}

// IsZero reports whether the identity has not been computed.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// shape is the canonical form hashed into an Identity.
type shape struct {
	Source string       `msgpack:"source"`
	Target string       `msgpack:"target"`
	Fields []fieldShape `msgpack:"fields"`
}

type fieldShape struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Nullable bool   `msgpack:"nullable"`
}

// ComputeIdentity hashes the source type, the target type (empty for
// anonymous structures) and the ordered member signatures of s. Nested
// structures must already carry their identity; it stands in for the
// generated type wherever a member refers to one.
func ComputeIdentity(s *Structure, names TypeNamer) (Identity, error) {
	sh := shape{
		Source: typeKey(s.SourceType, names),
		Fields: make([]fieldShape, 0, len(s.Fields)),
	}

	if s.Target != nil {
		sh.Target = s.Target.String()
	}

	for _, f := range s.Fields {
		sh.Fields = append(sh.Fields, fieldShape{
			Name:     f.Name,
			Type:     typeKey(f.Type, names),
			Nullable: f.Nullable,
		})
	}

	data, err := msgpack.Marshal(&sh)
	if err != nil {
		return Identity{}, fmt.Errorf("encode shape of %s: %w", s.Path, err)
	}

	return Identity(xxh3.Hash128(data).Bytes()), nil
}

// TypeNamer spells generated placeholder types. It returns false for types
// it does not know.
type TypeNamer func(*analyze.TypeInfo) (string, bool)

// typeKey spells t canonically, replacing generated placeholders with the
// spelling names provides.
func typeKey(t *analyze.TypeInfo, names TypeNamer) string {
	if t == nil {
		return "<nil>"
	}

	if names != nil {
		if s, ok := names(t); ok {
			return s
		}
	}

	switch t.Kind {
	case analyze.TypeKindPointer:
		return "*" + typeKey(t.ElemType, names)
	case analyze.TypeKindSlice:
		return "[]" + typeKey(t.ElemType, names)
	case analyze.TypeKindSeq:
		return "iter.Seq[" + typeKey(t.ElemType, names) + "]"
	case analyze.TypeKindArray:
		return fmt.Sprintf("[%d]%s", t.ArrayLen, typeKey(t.ElemType, names))
	case analyze.TypeKindMap:
		return "map[" + typeKey(t.KeyType, names) + "]" + typeKey(t.ElemType, names)
	case analyze.TypeKindGroup:
		return "group[" + typeKey(t.KeyType, names) + "]" + typeKey(t.ElemType, names)
	default:
		return t.String()
	}
}
