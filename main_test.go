package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/util"
)

func writeDataFile(t *testing.T, dir string, keys []int64) string {
	t.Helper()
	codec, err := record.NewCodec(record.DefaultRecordSize)
	require.NoError(t, err)

	path := filepath.Join(dir, "data.bin")
	require.NoError(t, util.CreateFileBySize(path, int64(len(keys)*codec.RecordSize())))
	for i, k := range keys {
		b, err := codec.Encode(record.NewRecord(k, -k))
		require.NoError(t, err)
		require.NoError(t, util.WriteFileBySeekStart(path, int64(i*codec.RecordSize()), b))
	}
	return path
}

func readKeys(t *testing.T, path string, n int) []int64 {
	t.Helper()
	codec, err := record.NewCodec(record.DefaultRecordSize)
	require.NoError(t, err)

	raw, err := util.ReadFileBySeekStartWithSize(path, 0, n*codec.RecordSize())
	require.NoError(t, err)
	keys := make([]int64, n)
	for i := range keys {
		r, err := codec.Decode(raw[i*codec.RecordSize() : (i+1)*codec.RecordSize()])
		require.NoError(t, err)
		assert.Equal(t, -r.Key, r.Value, "value must travel with its key")
		keys[i] = r.Key
	}
	return keys
}

func TestRunSortsFileInPlace(t *testing.T) {
	dir := t.TempDir()
	rnd := util.NewRandom(99)
	keys := make([]int64, 200)
	for i := range keys {
		keys[i] = rnd.NextRange(-1000, 1000)
	}
	data := writeDataFile(t, dir, keys)

	cfgPath := filepath.Join(dir, "heapsort.ini")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[sort]\nblock_size = 64\n[logs]\nlog_level = error\n"), 0644))
	statFile := filepath.Join(dir, "stats.txt")

	var out bytes.Buffer
	code := run([]string{"-configPath", cfgPath, "-verify", data, "3", statFile}, &out)
	require.Equal(t, 0, code, out.String())

	sorted := readKeys(t, data, len(keys))
	for i := 1; i < len(sorted); i++ {
		require.LessOrEqual(t, sorted[i-1], sorted[i])
	}

	report, err := os.ReadFile(statFile)
	require.NoError(t, err)
	lines := strings.Split(string(report), "\n")
	assert.Equal(t, "data.bin, with 12 blocks and 3 buffers", lines[0])
	// 13 blocks' leaders (the last one short) in rows of eight
	assert.Len(t, strings.Split(lines[1], "\t"), 8)
	assert.Len(t, strings.Split(lines[2], "\t"), 5)
	assert.True(t, strings.HasPrefix(lines[3], "Cache hits: "))

	// a second run appends
	require.Equal(t, 0, run([]string{"-configPath", cfgPath, data, "1", statFile}, &out))
	again, err := os.ReadFile(statFile)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(again), "data.bin, with"))
	assert.Contains(t, string(again), "and 1 buffers")
}

func TestRunRejectsBadArguments(t *testing.T) {
	dir := t.TempDir()
	data := writeDataFile(t, dir, []int64{3, 1, 2})

	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{data, "3"}, &out))
	assert.Contains(t, out.String(), "Expected 3 arguments, got 2.")

	out.Reset()
	assert.Equal(t, 2, run([]string{filepath.Join(dir, "missing.bin"), "25", ""}, &out))
	msg := out.String()
	assert.Contains(t, msg, "Error opening data-file")
	assert.Contains(t, msg, "range [1, 20]")
	assert.Contains(t, msg, "Error creating stat-file")
	assert.Contains(t, msg, "Program initialization failed.")

	// nothing was touched
	assert.Equal(t, []int64{3, 1, 2}, readKeys(t, data, 3))
}
