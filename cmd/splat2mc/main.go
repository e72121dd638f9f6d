// Command splat2mc converts Gaussian splat PLY files into Minecraft
// particle datapacks.
package main

import (
	"os"

	"github.com/banshee-data/splat2mc/internal/fsutil"
)

func main() {
	a := &app{fs: fsutil.OSFileSystem{}, stdout: os.Stdout, stderr: os.Stderr}
	if err := execute(a, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
