package timelog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/croplog/taskdata-decoder/internal/logging"
	"github.com/croplog/taskdata-decoder/internal/taskdata"
)

// FileProvider supplies the per-run inputs: the XML header descriptor and
// the raw binary stream. Paths are the caller's concern; the aggregator only
// sees resolved streams.
type FileProvider interface {
	RunDescriptor(name string) (*taskdata.TimeLogHeader, error)
	RunData(name string) (io.ReadCloser, error)
}

// DevicePair names one device allocated to a task.
type DevicePair struct {
	Name       string
	ClientName string
}

// TaskResult is the decoded output for one logged or planned task. Results
// are immutable once the aggregator emits them.
type TaskResult struct {
	TaskID    string
	Name      string
	FieldName string
	FarmName  string
	Products  map[string]string
	Devices   []DevicePair
	Headers   []*HeaderColumn
	Channels  []*ChannelColumn

	Planned     bool
	RunsDecoded int
	RunsSkipped int
}

// Samples returns the total number of decoded samples across all series.
func (r *TaskResult) Samples() int64 {
	var n int64
	for _, col := range r.Headers {
		n += int64(col.Series.Len())
	}
	for _, col := range r.Channels {
		n += int64(col.Series.Len())
	}
	return n
}

// Aggregator walks the merged document's tasks in document order and decodes
// each logged run, accumulating best-effort results: conditions local to one
// run or channel never abort sibling runs or tasks.
type Aggregator struct {
	cat   *taskdata.Catalog
	files FileProvider
	log   *slog.Logger
}

// NewAggregator creates an aggregator over a schema catalog and a run file
// provider.
func NewAggregator(cat *taskdata.Catalog, files FileProvider) *Aggregator {
	return &Aggregator{
		cat:   cat,
		files: files,
		log:   logging.Component("timelog"),
	}
}

// Aggregate decodes every task and returns one result per task, in document
// order. Cancelling the context stops between tasks, returning what has
// been decoded so far.
func (a *Aggregator) Aggregate(ctx context.Context) []*TaskResult {
	tasks := a.cat.Tasks()
	results := make([]*TaskResult, 0, len(tasks))

	for i := range tasks {
		if ctx.Err() != nil {
			a.log.Warn("aggregation cancelled", "decoded_tasks", len(results))
			return results
		}
		results = append(results, a.decodeTask(ctx, &tasks[i]))
	}
	return results
}

func (a *Aggregator) decodeTask(ctx context.Context, tsk *taskdata.Task) *TaskResult {
	log := logging.TaskLogger(logging.CorrelationID(ctx), tsk.ID, tsk.Designator)

	res := &TaskResult{
		TaskID:   tsk.ID,
		Name:     tsk.Designator,
		Products: a.cat.ProductNames(tsk.Zones),
	}

	farm, farmErr := a.cat.FarmName(tsk.FarmRef)
	if farmErr != nil {
		log.Warn("farm lookup failed", "ref", tsk.FarmRef, "error", farmErr)
	}
	res.FarmName = farm

	field, fieldErr := a.cat.FieldName(tsk.FieldRef)
	if fieldErr != nil {
		log.Warn("field lookup failed", "ref", tsk.FieldRef, "error", fieldErr)
	}
	res.FieldName = field

	// Planned tasks carry metadata only; there is nothing to decode.
	if tsk.Planned() {
		res.Planned = true
		return res
	}

	// A failed single-match lookup is fatal to the task's runs, never to
	// sibling tasks: the result is still emitted with whatever resolved.
	if farmErr != nil || fieldErr != nil {
		log.Warn("task metadata unresolved, skipping runs")
		res.RunsSkipped = len(tsk.TimeLogs)
		return res
	}

	devices, err := a.resolveDevices(tsk)
	if err != nil {
		log.Warn("device allocation lookup failed, skipping runs", "error", err)
		res.RunsSkipped = len(tsk.TimeLogs)
		return res
	}
	res.Devices = devices

	for _, tlg := range tsk.TimeLogs {
		a.decodeRun(tsk, res, tlg.Filename)
	}
	return res
}

// resolveDevices maps the task's device allocations to name pairs. A failed
// single-match lookup is fatal to the task's runs.
func (a *Aggregator) resolveDevices(tsk *taskdata.Task) ([]DevicePair, error) {
	devices := make([]DevicePair, 0, len(tsk.Allocations))
	for _, alloc := range tsk.Allocations {
		dev, err := a.cat.DeviceByRef(alloc.DeviceRef)
		if err != nil {
			return nil, err
		}
		devices = append(devices, DevicePair{
			Name:       dev.Designator,
			ClientName: dev.ClientName,
		})
	}
	return devices, nil
}

func (a *Aggregator) decodeRun(tsk *taskdata.Task, res *TaskResult, name string) {
	log := logging.RunLogger(tsk.ID, name)

	hdr, err := a.files.RunDescriptor(name)
	if err != nil {
		log.Warn("run descriptor unavailable", "error", err)
		res.RunsSkipped++
		return
	}

	headers := make([]*HeaderColumn, 0)
	for _, f := range BuildHeaderSchema(hdr) {
		headers = append(headers, NewHeaderColumn(f))
	}

	channels := make([]*ChannelColumn, 0, len(hdr.Values))
	for _, dlv := range hdr.Values {
		desc := ResolveChannel(a.cat, dlv.ElementRef, ParseDDI(dlv.DDI))
		channels = append(channels, NewChannelColumn(desc, parseSeed(dlv.Value)))
	}

	// The columns belong to the result whether or not the binary decodes:
	// a fully described run with no data still appears, with empty series.
	res.Headers = append(res.Headers, headers...)
	res.Channels = append(res.Channels, channels...)

	data, err := a.files.RunData(name)
	if err != nil {
		if errors.Is(err, taskdata.ErrMissingTimeLog) {
			log.Info("no binary file for run, skipping")
		} else {
			log.Warn("open run data failed", "error", err)
		}
		res.RunsSkipped++
		return
	}
	defer data.Close()

	if err := a.decodeStream(data, headers, channels); err != nil {
		log.Warn("run decode stopped early", "error", err)
	}
	res.RunsDecoded++
}

func (a *Aggregator) decodeStream(r io.Reader, headers []*HeaderColumn, channels []*ChannelColumn) error {
	return NewDecoder(headers, channels).Decode(r)
}

// parseSeed parses a channel's schema-declared start value. A non-numeric
// literal degrades to 0.
func parseSeed(literal string) int32 {
	n, err := strconv.ParseInt(literal, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
