package fields

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rfdestaques/pkg/contracts/domain"
)

// Excel serial day numbers accepted as dates (1900-01-01 to 9999-12-31)
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// dayFirstLayouts are tried in order for text dates
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate reads a maturity date. Native dates pass through, native numbers
// are taken as Excel serial dates and text is parsed day-first.
// The result is truncated to midnight UTC.
func ParseDate(c domain.Cell) (time.Time, bool) {
	switch c.Kind {
	case domain.CellDate:
		return midnight(c.Time), true
	case domain.CellNumber:
		if c.Number < minExcelSerial || c.Number > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return time.Time{}, false
		}
		return midnight(t), true
	case domain.CellText:
		return parseDateText(c.Text)
	default:
		return time.Time{}, false
	}
}

func parseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b, negative when b is earlier
func DaysBetween(a, b time.Time) int {
	return int(midnight(b).Sub(midnight(a)).Hours() / 24)
}
