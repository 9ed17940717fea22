package domain

import "time"

// Menu is one day's card. At most one menu is active per service date.
type Menu struct {
	ID          int64
	ServiceDate string
	Active      bool
}

// MenuItem is a sellable entry on a menu. Prices are integer cents, prep
// times are seconds.
type MenuItem struct {
	ID          int64
	MenuID      int64
	Name        string
	PriceCents  int64
	PrepTimeSec int
	Available   bool
}

// ServiceDateFormat is the canonical YYYY-MM-DD form used to partition
// ticket numbering and queue queries.
const ServiceDateFormat = "2006-01-02"

// ServiceDateOf returns the service date the instant t belongs to.
func ServiceDateOf(t time.Time) string {
	return t.Format(ServiceDateFormat)
}
