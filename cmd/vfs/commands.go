package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/meigma/vfs"
)

// invocation carries everything a command needs for one run.
type invocation struct {
	archivePath string
	args        []string
	human       bool
	stdout      io.Writer
	logger      *slog.Logger
	archiveOpts []vfs.Option
}

func (inv *invocation) open() (*vfs.Archive, error) {
	return vfs.Open(inv.archivePath, inv.archiveOpts...)
}

func (inv *invocation) bytes(n uint64) string {
	if inv.human {
		return humanize.IBytes(n)
	}
	return strconv.FormatUint(n, 10)
}

type command struct {
	name    string
	usage   string
	summary string
	nargs   int
	run     func(inv *invocation) error
}

var commands = []command{
	{"create", "BLOCKSIZE BLOCKCOUNT", "create an empty archive", 2, runCreate},
	{"add", "SOURCE TARGET", "store file SOURCE under name TARGET", 2, runAdd},
	{"get", "NAME OUTPUT", "extract NAME into file OUTPUT", 2, runGet},
	{"del", "NAME", "delete NAME", 1, runDelete},
	{"free", "", "print free bytes", 0, runFree},
	{"used", "", "print used bytes", 0, runUsed},
	{"list", "", "print name,size,numBlocks,block0,... per file", 0, runList},
	{"defrag", "", "compact blocks into file order", 0, runDefrag},
	{"stats", "", "print capacity and layout figures", 0, runStats},
	{"check", "", "verify metadata and block store consistency", 0, runCheck},
	{"digest", "NAME", "print the sha256 digest of NAME", 1, runDigest},
}

func dispatch(inv *invocation, name string) error {
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if len(inv.args) != c.nargs {
			return &usageError{msg: fmt.Sprintf("%s expects %d argument(s): %s", c.name, c.nargs, c.usage)}
		}
		inv.logger = inv.logger.With("command", c.name, "archive", inv.archivePath)
		return c.run(inv)
	}
	return &usageError{msg: fmt.Sprintf("unknown command %q", name)}
}

func parseCount(arg, what string) (uint64, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || n == 0 {
		return 0, &usageError{msg: fmt.Sprintf("%s must be a positive integer, got %q", what, arg)}
	}
	return n, nil
}

func runCreate(inv *invocation) error {
	blockSize, err := parseCount(inv.args[0], "BLOCKSIZE")
	if err != nil {
		return err
	}
	blockCount, err := parseCount(inv.args[1], "BLOCKCOUNT")
	if err != nil {
		return err
	}
	_, err = vfs.Create(inv.archivePath, blockSize, blockCount, inv.archiveOpts...)
	return err
}

func runAdd(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	return a.AddFile(inv.args[1], inv.args[0])
}

func runGet(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	return a.GetFile(inv.args[0], inv.args[1])
}

func runDelete(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	return a.Delete(inv.args[0])
}

func runFree(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	fmt.Fprintln(inv.stdout, inv.bytes(a.FreeBytes()))
	return nil
}

func runUsed(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	fmt.Fprintln(inv.stdout, inv.bytes(a.UsedBytes()))
	return nil
}

func runList(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	for _, f := range a.List() {
		fields := make([]string, 0, 3+len(f.Blocks))
		fields = append(fields, f.Name, strconv.FormatUint(f.Size, 10), strconv.Itoa(len(f.Blocks)))
		for _, b := range f.Blocks {
			fields = append(fields, strconv.Itoa(b))
		}
		fmt.Fprintln(inv.stdout, strings.Join(fields, ","))
	}
	return nil
}

func runDefrag(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	stats, err := a.DefragWithStats()
	if err != nil {
		return err
	}
	inv.logger.Debug("defrag finished", "swaps", stats.Swaps, "moved", stats.Moved)
	return nil
}

func runStats(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	s := a.Stats()
	rows := []struct {
		key   string
		value string
	}{
		{"block_size", inv.bytes(s.BlockSize)},
		{"block_count", strconv.FormatUint(s.BlockCount, 10)},
		{"free_blocks", strconv.FormatUint(s.FreeBlocks, 10)},
		{"used_blocks", strconv.FormatUint(s.UsedBlocks, 10)},
		{"free_bytes", inv.bytes(s.FreeBytes)},
		{"used_bytes", inv.bytes(s.UsedBytes)},
		{"files", strconv.Itoa(s.Files)},
		{"fragmented_files", strconv.Itoa(s.Fragmented)},
	}
	for _, r := range rows {
		fmt.Fprintf(inv.stdout, "%s: %s\n", r.key, r.value)
	}
	return nil
}

func runCheck(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	if err := a.Check(); err != nil {
		return err
	}
	fmt.Fprintln(inv.stdout, "ok")
	return nil
}

func runDigest(inv *invocation) error {
	a, err := inv.open()
	if err != nil {
		return err
	}
	d, err := a.Digest(inv.args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(inv.stdout, d.String())
	return nil
}
