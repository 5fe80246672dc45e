// Package stats measures a run: elapsed time, CPU time from
// /proc/self/stat, and the number of statements executed.
package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tklauser/go-sysconf"
)

type Stats struct {
	start  time.Time
	user   time.Duration
	system time.Duration
	cpu    bool // CPU times could be read at Start
}

func Start() *Stats {

	s := &Stats{start: time.Now()}

	if user, system, err := CPUTimes(); err == nil {
		s.user, s.system, s.cpu = user, system, true
	}

	return s
}

//
// The interesting fields of /proc/<pid>/stat are counted after the
// command name, which is in parentheses and may contain blanks
//

func parseStat(contents string) (utime, stime int64, err error) {

	i := strings.LastIndexByte(contents, ')')
	if i < 0 {
		return 0, 0, fmt.Errorf("malformed stat line")
	}

	// fields[0] is the state, field 3 of the full line
	fields := strings.Fields(contents[i+1:])
	if len(fields) < 13 {
		return 0, 0, fmt.Errorf("short stat line")
	}

	if utime, err = strconv.ParseInt(fields[11], 10, 64); err != nil {
		return 0, 0, err
	}

	if stime, err = strconv.ParseInt(fields[12], 10, 64); err != nil {
		return 0, 0, err
	}

	return utime, stime, nil
}

func ticks(n, clktck int64) time.Duration {

	return time.Duration(n) * time.Second / time.Duration(clktck)
}

// CPUTimes returns the user and system time used by this process.
func CPUTimes() (time.Duration, time.Duration, error) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return 0, 0, err
	}

	if clktck <= 0 {
		return 0, 0, fmt.Errorf("bad clock tick rate %d", clktck)
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0, err
	}

	utime, stime, err := parseStat(string(contents))
	if err != nil {
		return 0, 0, err
	}

	return ticks(utime, clktck), ticks(stime, clktck), nil
}

func FormatCPUTime(d time.Duration) string {

	t := int64(d / time.Second)

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

func (s *Stats) Report(w io.Writer, statements int) {

	elapsed := time.Since(s.start)

	fmt.Fprintf(w, "Statements executed: %d\n", statements)

	user, system, err := CPUTimes()
	if err != nil || !s.cpu {
		fmt.Fprintf(w, "CPU Usage: elapsed = %s / user = n/a / system = n/a\n",
			FormatCPUTime(elapsed))
		return
	}

	fmt.Fprintf(w, "CPU Usage: elapsed = %s / user = %s / system = %s\n",
		FormatCPUTime(elapsed), FormatCPUTime(user-s.user), FormatCPUTime(system-s.system))
}
