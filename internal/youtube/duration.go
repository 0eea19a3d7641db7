package youtube

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts an ISO-8601 duration as returned by the API
// (e.g. "PT1H23M45S", "P1DT2H") into whole seconds.
func ParseDuration(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	datePart, timePart, _ := strings.Cut(rest, "T")

	total := 0
	parse := func(part string, units map[byte]int) error {
		num := ""
		for i := 0; i < len(part); i++ {
			ch := part[i]
			if ch >= '0' && ch <= '9' {
				num += string(ch)
				continue
			}
			mult, ok := units[ch]
			if !ok || num == "" {
				return fmt.Errorf("invalid duration %q", s)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", s, err)
			}
			total += n * mult
			num = ""
		}
		if num != "" {
			return fmt.Errorf("invalid duration %q", s)
		}
		return nil
	}

	if err := parse(datePart, map[byte]int{'D': 86400, 'W': 604800}); err != nil {
		return 0, err
	}
	if err := parse(timePart, map[byte]int{'H': 3600, 'M': 60, 'S': 1}); err != nil {
		return 0, err
	}
	return total, nil
}
