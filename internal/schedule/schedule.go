// Package schedule aggregates bookings per calendar day for the admin
// capacity view. Capacity figures are informational; nothing is enforced.
package schedule

import (
	"sort"
	"time"

	"detailing-booking/internal/domain"
)

const (
	BookingCapacityPerDay = 2
	PackageCapacityPerDay = 2
)

const dateLayout = "2006-01-02"

// Day summarizes one calendar date.
type Day struct {
	Date            string   `json:"date"`
	Bookings        int      `json:"bookings"`
	Packages        int      `json:"packages"`
	BookingCapacity int      `json:"bookingCapacity"`
	PackageCapacity int      `json:"packageCapacity"`
	BookingsFull    bool     `json:"bookingsFull"`
	PackagesFull    bool     `json:"packagesFull"`
	BookingIDs      []string `json:"bookingIds"`
}

// DateKey is the UTC calendar date of t, time of day ignored.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// GroupByDate buckets bookings by DateKey(BookingDate) and returns the days
// in ascending date order. Within a day, booking ids keep input order.
func GroupByDate(bookings []domain.Booking) []Day {
	byDate := make(map[string]*Day)
	for _, b := range bookings {
		key := DateKey(b.BookingDate)
		day, ok := byDate[key]
		if !ok {
			day = &Day{
				Date:            key,
				BookingCapacity: BookingCapacityPerDay,
				PackageCapacity: PackageCapacityPerDay,
			}
			byDate[key] = day
		}
		day.Bookings++
		day.Packages += b.PackageCount()
		day.BookingIDs = append(day.BookingIDs, b.ID)
	}

	days := make([]Day, 0, len(byDate))
	for _, d := range byDate {
		d.BookingsFull = d.Bookings >= d.BookingCapacity
		d.PackagesFull = d.Packages >= d.PackageCapacity
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// ForDate returns the summary for one date, zero-valued if nothing is booked.
func ForDate(bookings []domain.Booking, date time.Time) Day {
	key := DateKey(date)
	for _, d := range GroupByDate(bookings) {
		if d.Date == key {
			return d
		}
	}
	return Day{Date: key, BookingCapacity: BookingCapacityPerDay, PackageCapacity: PackageCapacityPerDay}
}
