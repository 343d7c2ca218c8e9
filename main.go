package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/xheapsort/conf"
	"github.com/zhukovaskychina/xheapsort/logger"
	"github.com/zhukovaskychina/xheapsort/sorter/heap"
	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/sorter/stats"
	"github.com/zhukovaskychina/xheapsort/storage/blocks"
	"github.com/zhukovaskychina/xheapsort/storage/buffer_pool"
	"github.com/zhukovaskychina/xheapsort/util"
)

const help = `
******************************************************************************************
*用法: heapsort [-configPath file] [-verify] <data-file> <num-buffers> <stat-file>
*1. -- configPath   指定 ini 或 toml 配置文件
*2. -- verify       排序前后校验记录集合并检查有序
*3. data-file       待排序的二进制文件，原地排序
*4. num-buffers     缓冲页数量，范围 [1, 20]
*5. stat-file       统计信息追加写入的文件
******************************************************************************************
`

type runArgs struct {
	runID      string
	configPath string
	verify     bool
	dataFile   string
	buffers    int
	statFile   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(argv []string, out io.Writer) int {
	fs := flag.NewFlagSet("heapsort", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, help) }

	args := &runArgs{runID: uuid.New().String()}
	fs.StringVar(&args.configPath, "configPath", "", "配置文件路径")
	fs.BoolVar(&args.verify, "verify", false, "校验排序结果")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	if problems := parseArgs(fs.Args(), args); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(out, p)
		}
		fmt.Fprintln(out, "Program initialization failed.")
		fmt.Fprint(out, help)
		return 2
	}

	cfg, err := conf.NewCfg().Load(&conf.CommandLineArgs{ConfigPath: args.configPath})
	if err != nil {
		fmt.Fprintf(out, "load config: %v\n", err)
		return 1
	}
	cfg.PoolCount = args.buffers
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return 1
	}

	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		fmt.Fprintf(out, "Failed to initialize logger: %v\n", err)
		return 1
	}

	if err := sortFile(cfg, args); err != nil {
		logger.Errorf("[%s] heapsort %s failed: %+v", args.runID, args.dataFile, err)
		return 1
	}
	return 0
}

// parseArgs checks the positional arguments and reports every problem, not
// just the first one.
func parseArgs(positional []string, args *runArgs) []string {
	if len(positional) != 3 {
		return []string{fmt.Sprintf("Expected 3 arguments, got %d.", len(positional))}
	}

	var problems []string
	args.dataFile = positional[0]
	if info, err := os.Stat(args.dataFile); err != nil || info.IsDir() {
		problems = append(problems, "Error opening data-file. Verify first parameter is a path to an existing binary file.")
	}

	n, err := strconv.Atoi(positional[1])
	if err != nil || n < 1 || n > conf.MaxPoolCount {
		problems = append(problems, fmt.Sprintf("Error determining number of buffers to allow. "+
			"Verify second parameter is valid integer in range [1, %d].", conf.MaxPoolCount))
	}
	args.buffers = n

	args.statFile = positional[2]
	if strings.TrimSpace(args.statFile) == "" {
		problems = append(problems, "Error creating stat-file. Verify third parameter is a valid path.")
	}
	return problems
}

func sortFile(cfg *conf.Cfg, args *runArgs) (err error) {
	store, err := blocks.OpenBlockFile(args.dataFile)
	if err != nil {
		return err
	}
	pool, err := buffer_pool.NewBufferPool(store, cfg.BufferPoolConfig())
	if err != nil {
		store.Close()
		return err
	}
	defer func() {
		if closeErr := pool.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	codec, err := record.NewCodec(cfg.RecordSize)
	if err != nil {
		return err
	}
	records, err := record.NewPagedCollection(pool, codec)
	if err != nil {
		return err
	}
	logger.Infof("[%s] sorting %s: %d records, block size %d, %d buffers",
		args.runID, args.dataFile, records.Length(), cfg.BlockSize, cfg.PoolCount)

	var before *util.MultisetHash
	if args.verify {
		if before, err = record.Checksum(records); err != nil {
			return errors.Wrap(err, "checksum before sort")
		}
	}

	base := pool.Stats()
	sorter := heap.NewSorter[record.Record]()
	if err := sorter.Sort(records); err != nil {
		return err
	}
	if err := pool.Flush(); err != nil {
		return err
	}
	report := stats.NewReport(filepath.Base(args.dataFile), pool, sorter.Elapsed(), nil).Since(base)

	if report.Leaders, err = record.Leaders(records, cfg.RecordsPerBlock()); err != nil {
		return err
	}

	if args.verify {
		if err := verify(records, before); err != nil {
			return err
		}
		logger.Infof("[%s] verified %d records", args.runID, records.Length())
	}

	if err := appendReport(args.statFile, report); err != nil {
		return err
	}
	logger.Infof("[%s] sorted %s in %v, hits=%d misses=%d reads=%d writes=%d",
		args.runID, args.dataFile, report.Elapsed, report.CacheHits, report.CacheMisses, report.DiskReads, report.DiskWrites)
	return nil
}

// verify checks that the sort only permuted records and left them in order.
func verify(records record.Collection, before *util.MultisetHash) error {
	after, err := record.Checksum(records)
	if err != nil {
		return errors.Wrap(err, "checksum after sort")
	}
	if !before.Equal(after) {
		return errors.Errorf("record checksum changed: %x before, %x after", before.Sum64(), after.Sum64())
	}
	ok, at, err := record.IsSorted(records)
	if err != nil {
		return errors.Wrap(err, "check order")
	}
	if !ok {
		return errors.Errorf("records out of order at index %d", at)
	}
	return nil
}

func appendReport(path string, report *stats.Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "open stat file %s", path)
	}
	if _, err := report.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write stat file %s", path)
	}
	return errors.Wrapf(f.Close(), "close stat file %s", path)
}
