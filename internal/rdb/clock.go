package rdb

import "time"

// nowMillis is a variable so tests can substitute a fixed clock when
// exercising already-elapsed expiry records.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
