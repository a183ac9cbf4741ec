// Package log is a thin adapter around glog.
package log

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
)

var (
	// V reports whether verbosity at the given level is enabled
	V = glog.V
	// Flush ensures any pending I/O is written
	Flush = glog.Flush

	Info     = glog.Info
	Infof    = glog.Infof
	Warning  = glog.Warning
	Warningf = glog.Warningf
	Error    = glog.Error
	Errorf   = glog.Errorf
)

// Level is the glog verbosity level
type Level = glog.Level

// glogFlags are the glog flags exposed on command lines
var glogFlags = []string{"v", "vmodule", "logtostderr", "alsologtostderr", "stderrthreshold", "log_dir"}

// RegisterFlags installs the glog flags on the given FlagSet
func RegisterFlags(fs *pflag.FlagSet) {
	for _, name := range glogFlags {
		if f := flag.CommandLine.Lookup(name); f != nil {
			fs.AddGoFlag(f)
		}
	}
}

// SetVerbosity changes the glog verbosity level
func SetVerbosity(level int) error {
	return flag.CommandLine.Set("v", strconv.Itoa(level))
}
