package domain

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix marks a client-generated id of an unconfirmed entity.
const TempIDPrefix = "temp-"

var tempSeq atomic.Int64

// NewTempID returns a locally unique placeholder id. The timestamp plus
// a process-wide sequence keeps ids monotonic even within one
// nanosecond tick; the uuid fragment keeps them unique across clients.
func NewTempID() string {
	return fmt.Sprintf("%s%d-%d-%s", TempIDPrefix, time.Now().UnixNano(),
		tempSeq.Add(1), uuid.NewString()[:8])
}

// IsTempID reports whether id names an unconfirmed optimistic entity.
func IsTempID(id string) bool { return strings.HasPrefix(id, TempIDPrefix) }
