package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// SeriesSource provides read access to the stored price/sale history for
// archival purposes. The archiver only needs enumeration and retrieval, not
// the merge surface, so the time-series store satisfies this implicitly.
type SeriesSource interface {
	Styles() ([]domain.StyleID, error)
	GetStyle(styleID domain.StyleID) (map[domain.SizeKey]domain.SizeDocument, error)
}

// Archiver serializes run output and the local history store to JSONL and
// uploads the result to blob storage. It never deletes local data; pruning is
// a separate, explicit step after an archive has been verified.
type Archiver struct {
	writer domain.BlobWriter
	series SeriesSource
}

// NewArchiver creates an Archiver. series may be nil when only run output is
// archived.
func NewArchiver(writer domain.BlobWriter, series SeriesSource) *Archiver {
	return &Archiver{writer: writer, series: series}
}

// scoredLine is the JSONL schema for one archived scored item.
type scoredLine struct {
	StyleID            string  `json:"style_id"`
	Size               string  `json:"size"`
	ChosenAction       string  `json:"chosen_action"`
	CrossingMargin     float64 `json:"crossing_margin"`
	CrossingMarginRate float64 `json:"crossing_margin_rate"`
	AddingMargin       float64 `json:"adding_margin"`
	AddingMarginRate   float64 `json:"adding_margin_rate"`
	Score              float64 `json:"score"`
	EffectiveVolume    float64 `json:"effective_volume"`
	VolumeApproximated bool    `json:"volume_approximated"`
}

// ArchiveRun uploads one run's ranked output to
// archive/runs/YYYY-MM/<run_id>.jsonl and returns the record count.
func (a *Archiver) ArchiveRun(ctx context.Context, report domain.RunReport, items []domain.ScoredItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	lines := make([]scoredLine, len(items))
	for i, item := range items {
		lines[i] = scoredLine{
			StyleID:            string(item.Item.StyleID),
			Size:               item.Item.Size.String(),
			ChosenAction:       item.Margin.ChosenAction,
			CrossingMargin:     item.Margin.CrossingMargin,
			CrossingMarginRate: item.Margin.CrossingMarginRate,
			AddingMargin:       item.Margin.AddingMargin,
			AddingMarginRate:   item.Margin.AddingMarginRate,
			Score:              item.Score,
			EffectiveVolume:    item.EffectiveVolume,
			VolumeApproximated: item.VolumeApproximated,
		}
	}

	buf, err := marshalJSONL(lines)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive run marshal: %w", err)
	}

	path := fmt.Sprintf("archive/runs/%s/%s.jsonl",
		report.StartedAt.UTC().Format("2006-01"), report.RunID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive run upload: %w", err)
	}
	return int64(len(items)), nil
}

// seriesLine is the JSONL schema for one archived (size, document) record.
type seriesLine struct {
	Size     string              `json:"size"`
	Document domain.SizeDocument `json:"document"`
}

// ArchiveTimeseries uploads the whole history store, one object per style at
// archive/timeseries/YYYY-MM-DD/<style_id>.jsonl, and returns the style
// count.
func (a *Archiver) ArchiveTimeseries(ctx context.Context, asOf time.Time) (int64, error) {
	if a.series == nil {
		return 0, fmt.Errorf("s3blob: archive timeseries: no series source configured")
	}

	styles, err := a.series.Styles()
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive timeseries list: %w", err)
	}

	day := asOf.UTC().Format("2006-01-02")
	var archived int64
	for _, styleID := range styles {
		docs, err := a.series.GetStyle(styleID)
		if err != nil {
			return archived, fmt.Errorf("s3blob: archive timeseries read %s: %w", styleID, err)
		}
		if len(docs) == 0 {
			continue
		}

		lines := make([]seriesLine, 0, len(docs))
		for size, doc := range docs {
			lines = append(lines, seriesLine{Size: string(size), Document: doc})
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].Size < lines[j].Size })

		buf, err := marshalJSONL(lines)
		if err != nil {
			return archived, fmt.Errorf("s3blob: archive timeseries marshal %s: %w", styleID, err)
		}

		path := fmt.Sprintf("archive/timeseries/%s/%s.jsonl", day, styleID)
		if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
			return archived, fmt.Errorf("s3blob: archive timeseries upload %s: %w", styleID, err)
		}
		archived++
	}
	return archived, nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON, one
// compact line per element.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
