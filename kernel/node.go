package kernel

import (
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// role selects the contract a node implements.
type role uint8

const (
	roleInto      role = iota // host value -> layout
	roleFrom                  // layout -> host value
	roleCopy                  // layout -> layout, same type
	roleAssignNA              // mark an option missing
	roleIsMissing             // test an option's presence flag
	roleCatEncode             // category value layout -> index
	roleCatDecode             // index -> category value
)

var roleNames = [...]string{
	roleInto:      "into",
	roleFrom:      "from",
	roleCopy:      "copy",
	roleAssignNA:  "assign_na",
	roleIsMissing: "is_missing",
	roleCatEncode: "cat_encode",
	roleCatDecode: "cat_decode",
}

func (r role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

type state uint8

const (
	stateNotInstantiated state = iota
	stateChildrenPending
	stateComplete
)

// node is one arena entry. Children are arena indices, never pointers, so the
// arena may grow while a parent is still pending.
type node struct {
	typ  *types.Type
	meta *layout.Meta

	// srcMeta is the source layout of composite copy nodes.
	srcMeta *layout.Meta

	kind  types.Kind
	base  types.BaseKind
	role  role
	state state

	children []uint32

	// size is the inline byte size of typ; pod copy nodes move this many bytes.
	size uint32
	pod  bool

	// keys holds host text values of struct field names.
	keys []host.Value

	// Categorical state. Category i is kept in its category type's default
	// layout in store at storeAddrs[i]; index maps the layout key of each
	// category to its index.
	store      *layout.Buffer
	storeAddrs []uint32
	index      map[string]uint32
	discSize   uint32
}

func (n *node) child(i int) uint32 {
	return n.children[i]
}
