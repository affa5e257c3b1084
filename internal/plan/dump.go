package plan

import (
	"github.com/davecgh/go-spew/spew"

	"projgen/internal/structure"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                6,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// dump renders a built structure tree for debug logs.
func dump(s *structure.Structure) string {
	return dumpConfig.Sdump(s)
}
