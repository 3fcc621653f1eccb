package debug

import (
	"fmt"

	"github.com/chzyer/flow"
	"github.com/rgee3/p5-bfs/go/bfs"
	"github.com/rgee3/p5-bfs/go/bio"
)

type FormatCmd struct {
	Image string `type:"[0]" desc:"disk image path"`
}

func (cfg *FormatCmd) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	if cfg.Image == "" {
		return fmt.Errorf("error: image path is required")
	}
	if err := bfs.FormatImage(cfg.Image); err != nil {
		return err
	}
	fmt.Printf("formatted %v: %v blocks of %v bytes\n",
		cfg.Image, bfs.DiskBlocks, bfs.BlockSize)
	return nil
}

// -----------------------------------------------------------------------------

type CheckCmd struct {
	Image string `type:"[0]" desc:"disk image path"`
}

func (cfg *CheckCmd) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	if cfg.Image == "" {
		return fmt.Errorf("error: image path is required")
	}
	return cfg.check()
}

func (cfg *CheckCmd) check() error {
	fd, err := bio.OpenImage(cfg.Image)
	if err != nil {
		return err
	}
	defer fd.Close()

	report, err := bfs.Fsck(fd)
	if err != nil {
		return err
	}
	fmt.Println(report)
	if !report.Clean() {
		return fmt.Errorf("%v problem(s) found", len(report.Problems))
	}
	return nil
}
