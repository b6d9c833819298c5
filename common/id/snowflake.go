// Package id generates message identifiers. Snowflake IDs are time-ordered,
// so message IDs double as a chronological tiebreaker, and they stay unique
// across server replicas sharing one Redis checkpoint store.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new unique int64 message ID.
func New() int64 {
	return node.Generate().Int64()
}
