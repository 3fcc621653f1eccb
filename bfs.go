package main

import (
	"github.com/chzyer/flagly"
	"github.com/chzyer/flow"
	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/debug"
)

type BFS struct {
	Format *debug.FormatCmd  `flagly:"handler"`
	Check  *debug.CheckCmd   `flagly:"handler"`
	Shell  *debug.BFSBrowser `flagly:"handler"`
}

func main() {
	bfs := new(BFS)
	f := flow.New()

	flagly.Run(bfs, f)

	if err := f.Wait(); err != nil {
		logex.Fatal(err)
	}
}
