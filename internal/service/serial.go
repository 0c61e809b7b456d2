package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
)

// SerialPrefix starts every invoice serial number
const SerialPrefix = "INV-"

// serialPattern bounds serial numbers accepted from callers, so a serial can never
// address anything but a top-level invoice object
var serialPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSerialNumber reports whether s has the shape of a serial number
func ValidSerialNumber(s string) bool {
	return serialPattern.MatchString(s)
}

// SerialSource mints invoice serial numbers
type SerialSource interface {
	Next() string
}

// SnowflakeSerials mints INV-YYYYMMDD-<snowflake id> serial numbers.
// IDs are time ordered and unique per node.
type SnowflakeSerials struct {
	node *snowflake.Node
	now  func() time.Time
}

// NewSnowflakeSerials creates a serial source for the given node (0-1023)
func NewSnowflakeSerials(nodeID int64, now func() time.Time) (*SnowflakeSerials, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &SnowflakeSerials{node: node, now: now}, nil
}

// Next returns a fresh serial number
func (s *SnowflakeSerials) Next() string {
	return fmt.Sprintf("%s%s-%s", SerialPrefix, s.now().UTC().Format("20060102"), s.node.Generate().String())
}
