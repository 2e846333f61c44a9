package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// strftime formats t using a C strftime-style format string. Unknown
// directives pass through unchanged.
func strftime(t time.Time, format string) string {
	var b strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'e':
			fmt.Fprintf(&b, "%2d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'I':
			b.WriteString(t.Format("03"))
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'p':
			b.WriteString(t.Format("PM"))
		case 'A':
			b.WriteString(t.Weekday().String())
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'B':
			b.WriteString(t.Month().String())
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'u':
			day := int(t.Weekday())
			if day == 0 {
				day = 7
			}
			b.WriteString(strconv.Itoa(day))
		case 'V':
			_, week := t.ISOWeek()
			fmt.Fprintf(&b, "%02d", week)
		case 'z':
			b.WriteString(t.Format("-0700"))
		case 'Z':
			b.WriteString(t.Format("MST"))
		case 's':
			b.WriteString(strconv.FormatInt(t.Unix(), 10))
		case '%':
			b.WriteByte('%')
		case '.':
			// %.Nf emits N fractional-second digits.
			if i+2 < len(runes) && runes[i+2] == 'f' {
				digits, err := strconv.Atoi(string(runes[i+1]))
				if err == nil && digits > 0 && digits <= 9 {
					div := 1
					for d := 0; d < 9-digits; d++ {
						div *= 10
					}
					fmt.Fprintf(&b, ".%0*d", digits, t.Nanosecond()/div)
					i += 2
					continue
				}
			}
			b.WriteRune('%')
			b.WriteRune(runes[i])
		default:
			b.WriteRune('%')
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
