package mainboilerplate

import log "github.com/sirupsen/logrus"

// Version and BuildDate are set via -ldflags at build time. They default to
// "development" values so `go build` without flags still produces a usable binary.
var (
	Version   = "development"
	BuildDate = "unknown"
)

// Must logs a fatal error and exits the process if err is non-nil. It is
// intended for initialization failures which the program cannot recover from,
// matching the CLI's documented "non-zero exit on fatal initialization failure".
func Must(err error, message string, args ...interface{}) {
	if err == nil {
		return
	}
	var fields = log.Fields{"err": err}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	log.WithFields(fields).Fatal(message)
}
