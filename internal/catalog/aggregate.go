package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/filevault/backend/internal/models"
)

// Aggregations are pure functions over a snapshot's file slice, so
// they run outside the store lock.

func UsageTotal(files []models.File) int64 {
	var total int64
	for _, file := range files {
		total += file.Size
	}
	return total
}

// UsageByType sums sizes per tag for the given closed tag list. Tags
// outside the list are not reported.
func UsageByType(files []models.File, categories []models.FileType) map[models.FileType]int64 {
	byType := make(map[models.FileType]int64, len(categories))
	for _, category := range categories {
		byType[category] = 0
	}
	for _, file := range files {
		if _, tracked := byType[file.Type]; tracked {
			byType[file.Type] += file.Size
		}
	}
	return byType
}

// Recent returns the n most recently uploaded files. The sort is
// stable over the snapshot's insertion order, so ties are
// deterministic.
func Recent(files []models.File, n int) []models.File {
	sorted := make([]models.File, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UploadDate.After(sorted[j].UploadDate)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func Favorites(files []models.File) []models.File {
	favorites := make([]models.File, 0)
	for _, file := range files {
		if file.IsFavorite {
			favorites = append(favorites, file)
		}
	}
	return favorites
}

type CalendarDay struct {
	Date      int    `json:"date"`
	FullDate  string `json:"fullDate"`
	HasFiles  bool   `json:"hasFiles"`
	FileCount int    `json:"fileCount"`
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// localDate reduces a timestamp to its local calendar date, which is
// what all day bucketing compares against.
func localDate(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// CalendarMonth buckets the month's uploads per calendar day. It
// always produces exactly daysInMonth entries and returns the files
// that fell inside the month.
func CalendarMonth(files []models.File, year, month int) ([]CalendarDay, []models.File, error) {
	if month < 1 || month > 12 {
		return nil, nil, fmt.Errorf("%w: month must be 1-12", ErrInvalidInput)
	}
	if year < 1 {
		return nil, nil, fmt.Errorf("%w: invalid year", ErrInvalidInput)
	}

	counts := make(map[int]int)
	matched := make([]models.File, 0)
	for _, file := range files {
		y, m, d := file.UploadDate.Local().Date()
		if y == year && m == time.Month(month) {
			counts[d]++
			matched = append(matched, file)
		}
	}

	total := daysInMonth(year, time.Month(month))
	days := make([]CalendarDay, total)
	for day := 1; day <= total; day++ {
		days[day-1] = CalendarDay{
			Date:      day,
			FullDate:  fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			HasFiles:  counts[day] > 0,
			FileCount: counts[day],
		}
	}
	return days, matched, nil
}

// FilesOnDate selects files whose upload date falls on the given
// calendar day, i.e. inside [date, date+1d).
func FilesOnDate(files []models.File, date time.Time) []models.File {
	day := localDate(date)
	matched := make([]models.File, 0)
	for _, file := range files {
		if localDate(file.UploadDate).Equal(day) {
			matched = append(matched, file)
		}
	}
	return matched
}

// FilesInRange selects files uploaded between start and end, inclusive
// on both calendar-day ends.
func FilesInRange(files []models.File, start, end time.Time) []models.File {
	first := localDate(start)
	last := localDate(end)
	matched := make([]models.File, 0)
	for _, file := range files {
		day := localDate(file.UploadDate)
		if !day.Before(first) && !day.After(last) {
			matched = append(matched, file)
		}
	}
	return matched
}
