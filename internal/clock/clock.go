package clock

import "time"

// NowFunc supplies the timestamps stamped onto lifecycle events. Tests
// override it to pin event creation times.
var NowFunc = time.Now

// Now returns the current time as seen by the event pipeline.
func Now() time.Time { return NowFunc() }
