package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/croplog/taskdata-decoder/internal/storage"
	"github.com/croplog/taskdata-decoder/internal/timelog"
)

// Version information (set via ldflags)
var (
	Version = "v0.1.0"
	GitSHA  = "unknown"
)

// Output holds one task's generated parquet tables with their integrity
// metadata, keyed by table name.
type Output struct {
	Parquets  map[string][]byte
	Checksums map[string]string
	RowCounts map[string]int64
	ByteSizes map[string]int64
}

// BuildTask generates the parquet tables for one decoded task. Tables with
// no rows are omitted from the output.
func BuildTask(res *timelog.TaskResult, cfg Config) (*Output, error) {
	out := &Output{
		Parquets:  make(map[string][]byte),
		Checksums: make(map[string]string),
		RowCounts: make(map[string]int64),
		ByteSizes: make(map[string]int64),
	}

	headerRows := headerRows(res)
	if len(headerRows) > 0 {
		data, err := writeParquet(headerRows, cfg)
		if err != nil {
			return nil, fmt.Errorf("write header_samples: %w", err)
		}
		out.add(HeaderSampleRow{}.TableName(), data, int64(len(headerRows)))
	}

	channelRows := channelRows(res)
	if len(channelRows) > 0 {
		data, err := writeParquet(channelRows, cfg)
		if err != nil {
			return nil, fmt.Errorf("write channel_samples: %w", err)
		}
		out.add(ChannelSampleRow{}.TableName(), data, int64(len(channelRows)))
	}

	return out, nil
}

func (o *Output) add(table string, data []byte, rows int64) {
	o.Parquets[table] = data
	o.Checksums[table] = ComputeChecksum(data)
	o.RowCounts[table] = rows
	o.ByteSizes[table] = int64(len(data))
}

func headerRows(res *timelog.TaskResult) []HeaderSampleRow {
	var rows []HeaderSampleRow
	for _, col := range res.Headers {
		isText := col.Field.Kind.IsText()
		for i := 0; i < col.Series.Len(); i++ {
			row := HeaderSampleRow{
				TaskID: res.TaskID,
				Field:  col.Field.Name,
				Cycle:  int64(i),
				IsText: isText,
			}
			if isText {
				row.Text = col.Series.Text(i)
			} else {
				row.Num = col.Series.Num(i)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func channelRows(res *timelog.TaskResult) []ChannelSampleRow {
	var rows []ChannelSampleRow
	for _, col := range res.Channels {
		desc := col.Descriptor
		for i := 0; i < col.Series.Len(); i++ {
			rows = append(rows, ChannelSampleRow{
				TaskID:            res.TaskID,
				DDI:               int32(desc.DDI),
				Name:              desc.Name,
				DeviceDesignator:  desc.DeviceDesignator,
				ElementDesignator: desc.ElementDesignator,
				ElementNumber:     desc.ElementNumber,
				Step:              int64(i),
				Value:             col.Series.Num(i),
			})
		}
	}
	return rows
}

func writeParquet[T any](rows []T, cfg Config) ([]byte, error) {
	var buf bytes.Buffer

	w := parquet.NewGenericWriter[T](&buf, parquet.Compression(codec(cfg.Compression)))
	if _, err := w.Write(rows); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func codec(name string) compress.Codec {
	switch name {
	case "zstd":
		return &parquet.Zstd
	case "none":
		return &parquet.Uncompressed
	default:
		return &parquet.Snappy
	}
}

// BuildManifest creates the export manifest for one task's output.
func BuildManifest(res *timelog.TaskResult, out *Output, taskDataID string) *storage.Manifest {
	tables := make(map[string]storage.TableInfo, len(out.Parquets))
	for table := range out.Parquets {
		tables[table] = storage.TableInfo{
			File:     table + ".parquet",
			Checksum: out.Checksums[table],
			RowCount: out.RowCounts[table],
			ByteSize: out.ByteSizes[table],
		}
	}

	return &storage.Manifest{
		Task: storage.TaskInfo{
			TaskDataID: taskDataID,
			TaskID:     res.TaskID,
			Name:       res.Name,
		},
		Tables: tables,
		Producer: storage.ProducerInfo{
			Name:    "taskdata-decoder",
			Version: Version,
			GitSHA:  GitSHA,
			BuildID: uuid.New().String(),
		},
		CreatedAt: time.Now().UTC(),
	}
}
