package mainboilerplate

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const maxStackTraceSize = 32768

// DiagnosticsConfig controls the debug HTTP endpoint exposing /metrics.
type DiagnosticsConfig struct {
	MetricsPort string `long:"metrics-port" env:"METRICS_PORT" default:":8090" description:"Port (or address:port) to serve /metrics over"`
}

// InitDiagnosticsAndRecover starts the metrics server and returns a function
// which should be deferred by main() to log (and re-panic) any unrecovered
// panic reaching the top of the program.
func InitDiagnosticsAndRecover(cfg DiagnosticsConfig) func() {
	if cfg.MetricsPort != "" {
		var mux = http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		go func() {
			if err := http.ListenAndServe(cfg.MetricsPort, mux); err != nil {
				log.WithField("err", err).Warn("metrics server exited")
			}
		}()
	}

	return func() {
		if r := recover(); r != nil {
			logStackTrace(r)
			panic(r)
		}
	}
}

func logStackTrace(r interface{}) {
	var stack = make([]byte, maxStackTraceSize)
	stack = stack[:runtime.Stack(stack, true)]
	log.WithFields(log.Fields{
		"err":   fmt.Sprint(r),
		"stack": strings.Split(string(stack), "\n"),
	}).Error("panic")
}
