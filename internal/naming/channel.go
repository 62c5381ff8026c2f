package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FilePattern is the glob the acquisition logger uses for per-channel CSVs,
// e.g. labjack_001_ch01.csv.
const FilePattern = "labjack_*_ch*.csv"

// channelRe splits a conforming base name into device id and channel token.
var channelRe = regexp.MustCompile(`^labjack_(.+)_ch(\d*)$`)

// ChannelName holds the structured result of parsing a channel file name.
type ChannelName struct {
	Base    string // File name without directory or extension.
	Device  string // Device/asset id ("001"); empty when the name does not conform.
	Channel int    // Channel number (1 for ch01); -1 when unknown.
	Label   string // Legend label ("ch01").
}

// MatchesPattern reports whether basename is a per-channel CSV name.
func MatchesPattern(basename string) bool {
	ok, _ := filepath.Match(FilePattern, basename)
	return ok
}

// ParseChannelName derives the legend label and identifiers from a file
// path. The label is the token after the last underscore when the base
// name contains "_ch", and the whole base name otherwise.
func ParseChannelName(path string) ChannelName {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	cn := ChannelName{Base: base, Channel: -1, Label: base}
	if strings.Contains(base, "_ch") {
		cn.Label = base[strings.LastIndex(base, "_")+1:]
	}

	if m := channelRe.FindStringSubmatch(base); m != nil {
		cn.Device = m[1]
		if n, err := strconv.Atoi(m[2]); err == nil {
			cn.Channel = n
		}
	}
	return cn
}
