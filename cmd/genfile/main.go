package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	gxsync "github.com/dubbogo/gost/sync"
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/xheapsort/conf"
	"github.com/zhukovaskychina/xheapsort/logger"
	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/storage/blocks"
	"github.com/zhukovaskychina/xheapsort/util"
)

const help = `
*用法: genfile [-configPath file] [-blocks n] [-seed s] [-workers w] <data-file>
*生成 n 个块的随机记录，块大小与记录宽度取自配置文件
`

// genOptions describes one generated data file.
type genOptions struct {
	path       string
	blocks     int
	blockSize  int
	recordSize int
	seed       int64
	workers    int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(argv []string, out io.Writer) int {
	fs := flag.NewFlagSet("genfile", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, help) }

	var configPath string
	opts := genOptions{}
	fs.StringVar(&configPath, "configPath", "", "配置文件路径")
	fs.IntVar(&opts.blocks, "blocks", 10, "块数量")
	fs.Int64Var(&opts.seed, "seed", 0, "随机种子，0 表示按时间生成")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "并发生成的 worker 数")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	opts.path = fs.Arg(0)

	cfg, err := conf.NewCfg().Load(&conf.CommandLineArgs{ConfigPath: configPath})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return 1
	}
	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		fmt.Fprintf(out, "Failed to initialize logger: %v\n", err)
		return 1
	}

	opts.blockSize = cfg.BlockSize
	opts.recordSize = cfg.RecordSize
	if opts.seed == 0 {
		opts.seed = util.NewTimeSeededRandom().NextRange(1, 1<<47)
	}

	if err := generate(opts); err != nil {
		logger.Errorf("genfile %s failed: %+v", opts.path, err)
		return 1
	}
	logger.Infof("wrote %d blocks of %d bytes to %s (seed %d)", opts.blocks, opts.blockSize, opts.path, opts.seed)
	return 0
}

// generate writes opts.blocks blocks of random records. Each block has its own
// generator seeded from opts.seed and the block number, so the output does not
// depend on how blocks are scheduled across workers.
func generate(opts genOptions) error {
	if opts.blocks <= 0 {
		return errors.Errorf("block count %d must be positive", opts.blocks)
	}
	codec, err := record.NewCodec(opts.recordSize)
	if err != nil {
		return errors.Wrap(err, "record codec")
	}
	if opts.blockSize%opts.recordSize != 0 {
		return errors.Errorf("block size %d is not a multiple of record size %d", opts.blockSize, opts.recordSize)
	}

	if err := util.CreateFileBySize(opts.path, int64(opts.blocks)*int64(opts.blockSize)); err != nil {
		return err
	}
	file, err := blocks.OpenBlockFile(opts.path)
	if err != nil {
		return err
	}
	defer file.Close()

	workers := opts.workers
	if workers <= 0 {
		workers = 1
	}
	taskPool := gxsync.NewTaskPoolSimple(workers)
	defer taskPool.Close()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for b := 0; b < opts.blocks; b++ {
		blockNo := b
		task := func() {
			defer wg.Done()
			if err := writeBlock(file, codec, opts, blockNo); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}
		wg.Add(1)
		if !taskPool.AddTask(task) {
			task()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return errors.Wrap(file.Sync(), "sync data file")
}

func writeBlock(file blocks.BlockStore, codec *record.Codec, opts genOptions, blockNo int) error {
	rnd := util.NewRandom(opts.seed*31 + int64(blockNo))
	buf := make([]byte, opts.blockSize)
	for off := 0; off < opts.blockSize; off += opts.recordSize {
		rec := record.NewRecord(
			rnd.NextRange(codec.MinValue(), codec.MaxValue()),
			rnd.NextRange(codec.MinValue(), codec.MaxValue()),
		)
		if err := codec.EncodeTo(buf[off:], rec); err != nil {
			return errors.Wrapf(err, "encode block %d", blockNo)
		}
	}
	if _, err := file.WriteAt(buf, int64(blockNo)*int64(opts.blockSize)); err != nil {
		return errors.Wrapf(err, "write block %d", blockNo)
	}
	logger.Debugf("generated block %d", blockNo)
	return nil
}
