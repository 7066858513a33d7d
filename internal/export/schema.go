// Package export turns decoded task results into parquet tables.
package export

// HeaderSampleRow is one decoded header-field sample in the header_samples
// table. Derived fields carry their rendered text; integer fields carry the
// raw value.
type HeaderSampleRow struct {
	TaskID string `parquet:"task_id"`
	Field  string `parquet:"field"`
	Cycle  int64  `parquet:"cycle"`
	IsText bool   `parquet:"is_text"`
	Num    int64  `parquet:"num_value"`
	Text   string `parquet:"text_value"`
}

// TableName returns the canonical table name.
func (HeaderSampleRow) TableName() string {
	return "header_samples"
}

// ChannelSampleRow is one decoded channel sample in the channel_samples
// table, carrying the channel's resolved designators for queryability.
type ChannelSampleRow struct {
	TaskID            string `parquet:"task_id"`
	DDI               int32  `parquet:"ddi"`
	Name              string `parquet:"name"`
	DeviceDesignator  string `parquet:"device"`
	ElementDesignator string `parquet:"element"`
	ElementNumber     string `parquet:"element_number"`
	Step              int64  `parquet:"step"`
	Value             int64  `parquet:"value"`
}

// TableName returns the canonical table name.
func (ChannelSampleRow) TableName() string {
	return "channel_samples"
}

// Config configures parquet output generation.
type Config struct {
	Compression string // "snappy" | "zstd" | "none"
}

// SchemaVersion is the version of the export schema.
// Increment this when making breaking changes.
const SchemaVersion = "1.0.0"
