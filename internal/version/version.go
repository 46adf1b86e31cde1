// Package version holds build information injected with -ldflags:
//
//	go build -ldflags "-X chatrelay/internal/version.Version=v1.2.0 -X chatrelay/internal/version.Commit=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"

	"github.com/gosuri/uitable"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a human-readable block with the build information.
func Info() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("version:", Version)
	table.AddRow("commit:", Commit)
	table.AddRow("buildDate:", Date)
	table.AddRow("goVersion:", runtime.Version())
	table.AddRow("platform:", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
	return table.String()
}
