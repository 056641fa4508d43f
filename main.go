package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // user timezones must resolve on minimal images

	"github.com/soteriahealth/soteria/cmd"
)

// Version information (set by the release build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
