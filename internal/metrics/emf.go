// Package metrics emits custom metrics in CloudWatch Embedded Metrics Format
// (EMF). EMF metrics are structured JSON written to stdout, where CloudWatch
// extracts them automatically without any API calls.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

// Recorder accumulates dimensions, metrics, and properties for a single EMF
// flush. Not safe for concurrent use; create one per batch.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	order      []metricDef
	values     map[string]float64
	properties map[string]any
}

// New creates an EMF Recorder for the given CloudWatch namespace. The
// FunctionName dimension is added automatically from the Lambda environment.
func New(namespace string) *Recorder {
	r := &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		values:     make(map[string]float64),
		properties: make(map[string]any),
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		r.dimensions["FunctionName"] = fn
	}
	return r
}

// Dimension adds a dimension. Dimensions are indexed in CloudWatch and
// appear as filterable attributes on the metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	if _, seen := r.values[name]; !seen {
		r.order = append(r.order, metricDef{Name: name, Unit: unit})
	}
	r.values[name] = value
	return r
}

// Duration records an elapsed time in milliseconds.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Property attaches a non-metric attribute to the log line (searchable in
// CloudWatch Logs Insights, not charted).
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF record to stdout.
func (r *Recorder) Flush() error {
	return r.FlushTo(os.Stdout)
}

// FlushTo writes the EMF record to w.
func (r *Recorder) FlushTo(w io.Writer) error {
	dimensionNames := make([]string, 0, len(r.dimensions))
	record := make(map[string]any, len(r.dimensions)+len(r.values)+len(r.properties)+1)

	for k, v := range r.dimensions {
		dimensionNames = append(dimensionNames, k)
		record[k] = v
	}
	for k, v := range r.values {
		record[k] = v
	}
	for k, v := range r.properties {
		record[k] = v
	}

	record["_aws"] = map[string]any{
		"Timestamp": time.Now().UnixMilli(),
		"CloudWatchMetrics": []map[string]any{{
			"Namespace":  r.namespace,
			"Dimensions": [][]string{dimensionNames},
			"Metrics":    r.order,
		}},
	}

	enc := json.NewEncoder(w)
	return enc.Encode(record)
}
