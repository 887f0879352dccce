package battlepass

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Percent is earned as a percentage of required, capped at 100.
func Percent(earned, required int) float64 {
	if required <= 0 {
		return 100
	}

	return min(100, float64(earned)/float64(required)*100)
}

// Remaining is the XP still missing, never below zero.
func Remaining(earned, required int) int {
	return max(0, required-earned)
}

type Countdown struct {
	Negative bool
	Days     int64
	Hours    int64
	Minutes  int64
	Seconds  int64
}

// TimeLeft is end - (now + offset) split into days, hours, minutes and
// seconds. A past end gives a negative countdown, it is not clamped.
func TimeLeft(end, now time.Time, offset time.Duration) Countdown {
	left := end.Sub(now.Add(offset))

	var c Countdown

	if left < 0 {
		c.Negative = true
		left = -left
	}

	total := int64(left / time.Second)

	c.Days = total / 86400
	total %= 86400
	c.Hours = total / 3600
	total %= 3600
	c.Minutes = total / 60
	c.Seconds = total % 60

	return c
}

func (c Countdown) String() string {
	sign := ""
	if c.Negative {
		sign = "-"
	}

	return fmt.Sprintf("%s%d days, %d hours, %d minutes, %d seconds", sign, c.Days, c.Hours, c.Minutes, c.Seconds)
}

// Report is everything printed for one run.
type Report struct {
	Earned       int
	Level        int
	ShowEpilogue bool
	SeasonEnd    time.Time
	Now          time.Time
	Offset       time.Duration

	// Gained is the XP earned since the previous snapshot, shown when HasPrevious is set.
	Gained      int
	HasPrevious bool
}

func (r Report) Render(w io.Writer) error {
	required := TotalRequired(false)

	lines := []string{
		fmt.Sprintf("Battlepass: tier %d/%d", r.Level, MaxTier),
		fmt.Sprintf("Progress: %.2f%% (%s XP remaining)",
			Percent(r.Earned, required), humanize.Comma(int64(Remaining(r.Earned, required)))),
	}

	if r.ShowEpilogue {
		withEpilogue := TotalRequired(true)

		lines = append(lines, fmt.Sprintf("Epilogue: %.2f%% (%s XP remaining)",
			Percent(r.Earned, withEpilogue), humanize.Comma(int64(Remaining(r.Earned, withEpilogue)))))
	}

	lines = append(lines, fmt.Sprintf("Season ends in: %s", TimeLeft(r.SeasonEnd, r.Now, r.Offset)))

	if r.HasPrevious {
		lines = append(lines, fmt.Sprintf("Since last check: %+d XP", r.Gained))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
