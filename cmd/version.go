package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// 编译时通过 -ldflags "-X main.BuildVersion=..." 注入
var (
	BuildBranch  string
	BuildVersion string
	BuildTime    string
	Builder      string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "show sigscan build info",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		printVersion()
	},
}

func printVersion() {
	rows := [][2]string{
		{"BuildBranch", BuildBranch},
		{"BuildVersion", BuildVersion},
		{"BuildTime", BuildTime},
		{"Builder", Builder},
		{"GoVersion", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
	}
	for _, r := range rows {
		fmt.Printf("\033[36m%-16s\033[0m %s\n", r[0], r[1])
	}
}
