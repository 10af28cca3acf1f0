package sensors

import (
	"structs"

	"github.com/rawbytedev/unscrupulous"
)

type Reading struct {
	unscrupulous.Plain
	_    structs.HostLayout
	ID   uint32
	Temp float32
	Seq  uint64
}

type Holey struct {
	unscrupulous.Plain
	Flag  bool
	Value uint64
}

type Unasserted struct {
	Name string
}
