// Package metrics exports a reliability report in the Prometheus text
// exposition format, suitable for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"monitor-reliability/pkg/models"
)

// WriteTextfile writes one gauge family per report field, labelled with monitor.
func WriteTextfile(w io.Writer, monitor string, rep models.ReliabilityReport, longestGapDays int) error {
	for _, mf := range families(monitor, rep, longestGapDays) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the textfile next to path and renames it into place so a
// collector never reads a partial file.
func WriteFile(path, monitor string, rep models.ReliabilityReport, longestGapDays int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("metrics: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTextfile(tmp, monitor, rep, longestGapDays); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: rename: %w", err)
	}
	return nil
}

func families(monitor string, rep models.ReliabilityReport, longestGapDays int) []*dto.MetricFamily {
	return []*dto.MetricFamily{
		gauge("monitor_reliability_percent", "Share of days in the window with at least one alert, in percent.", monitor, rep.ReliabilityPct),
		gauge("monitor_days_total", "Days in the observation window.", monitor, float64(rep.TotalDays)),
		gauge("monitor_days_hit", "Distinct days in the window with at least one alert.", monitor, float64(rep.ActualDays)),
		gauge("monitor_days_missed", "Days in the window without any alert.", monitor, float64(rep.MissedDays)),
		gauge("monitor_days_out_of_range", "Distinct alert days outside the window, not counted.", monitor, float64(rep.OutOfRange)),
		gauge("monitor_longest_gap_days", "Longest run of consecutive days without an alert.", monitor, float64(longestGapDays)),
	}
}

func gauge(name, help, monitor string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: []*dto.LabelPair{{Name: proto.String("monitor"), Value: proto.String(monitor)}},
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		}},
	}
}
