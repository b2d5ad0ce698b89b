package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Numberer issues quote numbers. Every number starts with Q{YYYYMMDD-HHMM}.
type Numberer interface {
	Next(t time.Time) string
}

func timestamp(t time.Time) string {
	return "Q" + t.Format("20060102-1504")
}

// TimestampNumberer issues the bare timestamp. Two quotes in the same minute
// share a number, and the store refuses the second.
type TimestampNumberer struct{}

func (TimestampNumberer) Next(t time.Time) string { return timestamp(t) }

// UUIDNumberer appends the first eight hex digits of a random UUID.
type UUIDNumberer struct{}

func (UUIDNumberer) Next(t time.Time) string {
	id := uuid.New()
	return timestamp(t) + "-" + strings.ToUpper(id.String()[:8])
}

// SnowflakeNumberer appends a snowflake ID, unique per node.
type SnowflakeNumberer struct {
	node *snowflake.Node
}

func NewSnowflakeNumberer(nodeID int64) (*SnowflakeNumberer, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return &SnowflakeNumberer{node: node}, nil
}

func (n *SnowflakeNumberer) Next(t time.Time) string {
	return timestamp(t) + "-" + strings.ToUpper(n.node.Generate().Base36())
}

// NumbererFor maps a configuration name (timestamp, uuid, snowflake) to a
// numberer.
func NumbererFor(kind string, nodeID int64) (Numberer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "timestamp":
		return TimestampNumberer{}, nil
	case "", "uuid":
		return UUIDNumberer{}, nil
	case "snowflake":
		return NewSnowflakeNumberer(nodeID)
	}
	return nil, fmt.Errorf("unknown quote numbering %q", kind)
}
