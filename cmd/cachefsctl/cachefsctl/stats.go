package cachefsctl

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"go.cachefs.dev/core/cache"
	mbp "go.cachefs.dev/core/mainboilerplate"
)

type cmdStats struct {
	Format string `long:"format" short:"o" choice:"table" choice:"yaml" default:"table" description:"Output format"`
}

func init() { CommandRegistry.AddCommand("", "stats", "Show the cache's analytics report", "", &cmdStats{}) }

func (cmd *cmdStats) Execute([]string) error {
	startup()
	var coord = mustCoordinator()
	defer coord.Unmount()

	var report = coord.Statistics()

	switch cmd.Format {
	case "yaml":
		var b, err = yaml.Marshal(report)
		mbp.Must(err, "encoding stats")
		os.Stdout.Write(b)
	default:
		outputStatsTable(report)
	}
	return nil
}

// outputStatsTable renders one row per Report statistic, whereas
// cache.Report.String puts every statistic on a single line for
// plain-text logs.
func outputStatsTable(report cache.Report) {
	var table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"hits", strconv.FormatInt(report.Hits, 10)})
	table.Append([]string{"misses", strconv.FormatInt(report.Misses, 10)})
	table.Append([]string{"evictions", strconv.FormatInt(report.Evictions, 10)})
	table.Append([]string{"prefetched", strconv.FormatInt(report.Prefetched, 10)})
	table.Append([]string{"total_accesses", strconv.FormatInt(report.TotalAccesses, 10)})
	table.Append([]string{"pinned_count", strconv.Itoa(report.PinnedCount)})
	table.Append([]string{"hit_rate", strconv.FormatFloat(report.HitRate, 'f', 4, 64)})
	table.Append([]string{"last_reset", report.LastReset.Format("2006-01-02T15:04:05Z07:00")})
	table.Render()
}
