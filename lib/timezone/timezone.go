package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// every supported auction site publishes closing times in Moscow
// time, so date math has to happen there no matter where the
// importer runs
func Now() time.Time {
	return time.Now().In(Location)
}
