package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
	err  error
)

// Init initializes the Snowflake node with the given node ID. Calling it more
// than once has no effect.
func Init(nodeID int64) error {
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered unique ID. When Init was never called the
// node defaults to 0.
func New() int64 {
	if e := Init(0); e != nil {
		panic("snowflake node: " + e.Error())
	}
	return node.Generate().Int64()
}

// NewString is New formatted in base 10, the form campaigns carry.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
