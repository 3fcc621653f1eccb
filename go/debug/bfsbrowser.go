package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/flow"
	"github.com/chzyer/readline"
	"github.com/rgee3/p5-bfs/go/bfs"
)

// BFSBrowser is the interactive shell over a mounted image.
type BFSBrowser struct {
	Image string `type:"[0]" desc:"disk image path"`
}

func (cfg *BFSBrowser) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	if cfg.Image == "" {
		return fmt.Errorf("error: image path is required")
	}
	vol, err := bfs.MountImage(f, cfg.Image)
	if err != nil {
		return err
	}
	defer vol.Close()

	return cfg.handle(vol)
}

func (cfg *BFSBrowser) handle(vol *bfs.Volume) error {
	rl, err := readline.New(cfg.Image + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		sp := strings.Fields(line)
		if len(sp) == 0 {
			continue
		}
		switch sp[0] {
		case "ls":
			cfg.List(vol)
		case "stat":
			cfg.Stat(vol, sp[1:])
		case "cat":
			cfg.Cat(vol, sp[1:])
		case "write":
			cfg.Write(vol, sp[1:])
		case "read":
			cfg.Read(vol, sp[1:])
		case "check":
			cfg.Check()
		case "help":
			println("commands: ls, stat <f>..., cat <f>, write <f> <data>, read <f> <off> <n>, check, exit")
		case "exit", "quit":
			return nil
		default:
			println("unknown command:", sp[0])
		}
	}
	return nil
}

func (cfg *BFSBrowser) List(vol *bfs.Volume) {
	for _, n := range vol.List() {
		println(n)
	}
}

func (cfg *BFSBrowser) Stat(vol *bfs.Volume, files []string) {
	for _, f := range files {
		fd, err := vol.OpenHandle(f)
		if err != nil {
			println(err.Error())
			continue
		}
		fmt.Printf("name: %v\nsize: %v\n", fd.Name(), fd.Size())
		fd.Close()
	}
}

func (cfg *BFSBrowser) Cat(vol *bfs.Volume, args []string) {
	if len(args) != 1 {
		println("usage: cat <file>")
		return
	}
	fd, err := vol.OpenHandle(args[0])
	if err != nil {
		println(err.Error())
		return
	}
	defer fd.Close()

	buf := make([]byte, fd.Size())
	if len(buf) == 0 {
		return
	}
	if _, err := fd.Read(buf); err != nil {
		println(err.Error())
		return
	}
	println(string(buf))
}

func (cfg *BFSBrowser) Write(vol *bfs.Volume, args []string) {
	if len(args) < 2 {
		println("usage: write <file> <data>")
		return
	}
	fd, err := vol.CreateHandle(args[0])
	if err != nil {
		println(err.Error())
		return
	}
	defer fd.Close()

	if _, err := fd.Write([]byte(strings.Join(args[1:], " "))); err != nil {
		println(err.Error())
	}
}

func (cfg *BFSBrowser) Read(vol *bfs.Volume, args []string) {
	if len(args) != 3 {
		println("usage: read <file> <off> <n>")
		return
	}
	off, err1 := strconv.ParseInt(args[1], 10, 64)
	n, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		println("usage: read <file> <off> <n>")
		return
	}
	fd, err := vol.OpenHandle(args[0])
	if err != nil {
		println(err.Error())
		return
	}
	defer fd.Close()

	if _, err := fd.Seek(off, 0); err != nil {
		println(err.Error())
		return
	}
	buf := make([]byte, n)
	got, err := fd.Read(buf)
	if err != nil {
		println(err.Error())
		return
	}
	fmt.Printf("%q\n", buf[:got])
}

func (cfg *BFSBrowser) Check() {
	// the image is already open through the volume; re-open read side only
	if err := (&CheckCmd{Image: cfg.Image}).check(); err != nil {
		println(err.Error())
	}
}
