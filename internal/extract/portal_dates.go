package extract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/campus-notice-collector/internal/models"
)

var fullDatePattern = regexp.MustCompile(`(\d{4})\s*[年/-]\s*(\d{1,2})\s*[月/-]\s*(\d{1,2})(?:\s*日)?(?:\s*\d{1,2}:\d{2})?`)

// ExtractPortalDates finds dates written with an explicit year, as portal
// notices and their attachments do, and returns the distinct ones as
// YYYY-MM-DD. The date of now is excluded since it is usually the page's
// own print stamp.
func ExtractPortalDates(text string, now time.Time) []string {
	today := now.Format(DateLayout)

	var dates []string
	for _, m := range fullDatePattern.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()).Format(DateLayout)
		if d == today {
			continue
		}
		dates = append(dates, d)
	}

	return models.UniqueStrings(dates)
}
