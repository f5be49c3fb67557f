package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	keylockerVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	cli := NewAppBuild("keylocker", "cmd/keylocker", keylockerVersion)
	cli.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", keylockerVersion)
	})
	// linux and darwin only. Only the linux build probes a raw device's
	// sector size (BLKSSZGET); darwin assumes 512-byte sectors.
	cli.Variant("linux", "amd64")
	cli.Variant("linux", "arm64")
	cli.Variant("darwin", "amd64")
	cli.Variant("darwin", "arm64")
	b.ImportApp(cli)

	b.Execute()
}
