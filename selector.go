package agon

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelfmt/agon/columns"
	"github.com/kestrelfmt/agon/rows"
	"github.com/kestrelfmt/agon/structfmt"
	"github.com/kestrelfmt/agon/tokencount"
)

var tracer = otel.Tracer("github.com/kestrelfmt/agon")

// Options configures Encode (spec §6's conceptual
// encode(value, format, force, min_savings, encoding)).
type Options struct {
	// Format picks a specific codec, or FormatAuto (the zero value)
	// to run the adaptive selector (spec §4.6).
	Format Format
	// Force skips the JSON candidate and the min-savings fallback
	// entirely: whatever the chosen (or best) non-JSON codec produces
	// is returned even if it is not actually smaller.
	Force bool
	// MinSavings is the minimum fractional token/byte reduction versus
	// the JSON candidate required to keep a non-JSON winner; default
	// 0.10 when zero and Format is FormatAuto.
	MinSavings float64
	// Encoding names the tokenizer to cost candidates with (e.g.
	// "o200k_base"); empty uses len(text) as a fast byte-length proxy.
	Encoding string
	// Delimiter overrides the rows/columns field delimiter.
	Delimiter string
	// ASCII requests ASCII tree glyphs from the columns codec instead
	// of the Unicode default.
	ASCII bool
}

const defaultMinSavings = 0.10

// Encode renders v as an EncodingResult under opts (spec §4.6). With an
// explicit Format other than FormatAuto/"" it invokes that codec
// directly; otherwise it runs every candidate codec, costs each with
// tokencount (or byte length when Encoding is empty), and picks the
// cheapest subject to Force and MinSavings.
func Encode(ctx context.Context, v Value, opts Options) (EncodingResult, error) {
	if opts.Format != "" && opts.Format != FormatAuto {
		text, err := encodeFormat(opts.Format, v, opts)
		if err != nil {
			return EncodingResult{}, err
		}
		return EncodingResult{Format: opts.Format, Text: text}, nil
	}

	minSavings := opts.MinSavings
	if minSavings == 0 {
		minSavings = defaultMinSavings
	}

	formats := []Format{FormatRows, FormatColumns, FormatStruct}
	if !opts.Force {
		formats = append([]Format{FormatJSON}, formats...)
	}

	ctx, span := tracer.Start(ctx, "agon.encode.select")
	defer span.End()
	correlation := uuid.NewString()
	span.SetAttributes(attribute.String("agon.correlation_id", correlation))

	candidates := make([]EncodingResult, len(formats))
	costs := make([]int, len(formats))
	group, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		i, f := i, f
		group.Go(func() error {
			_, cspan := tracer.Start(gctx, "agon.encode.candidate",
				trace.WithAttributes(attribute.String("agon.format", string(f))))
			defer cspan.End()
			text, err := encodeFormat(f, v, opts)
			if err != nil {
				return err
			}
			cost, err := tokencount.Count(text, opts.Encoding)
			if err != nil {
				return newErr(ErrEncodingUnavailable, "%v", err)
			}
			candidates[i] = EncodingResult{Format: f, Text: text}
			costs[i] = cost
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return EncodingResult{}, err
	}

	best := bestCandidate(formats, candidates, costs)

	if opts.Force || best.Format == FormatJSON {
		return best, nil
	}

	jsonIdx := indexOf(formats, FormatJSON)
	if jsonIdx < 0 {
		return best, nil
	}
	jsonCost := costs[jsonIdx]
	bestIdx := indexOf(formats, best.Format)
	savings := 1 - float64(costs[bestIdx])/float64(max(1, jsonCost))
	if savings < minSavings {
		return candidates[jsonIdx], nil
	}
	return best, nil
}

// bestCandidate picks the minimum-cost candidate, tie-breaking by the
// stable order json < rows < columns < struct (spec §4.6): formats is
// walked in that fixed order, so the first strictly-lower cost wins and
// equal costs keep whichever came first.
func bestCandidate(formats []Format, candidates []EncodingResult, costs []int) EncodingResult {
	bestIdx := 0
	for i := 1; i < len(formats); i++ {
		if costs[i] < costs[bestIdx] {
			bestIdx = i
		}
	}
	return candidates[bestIdx]
}

func indexOf(formats []Format, f Format) int {
	for i, c := range formats {
		if c == f {
			return i
		}
	}
	return -1
}

func encodeFormat(f Format, v Value, opts Options) (string, error) {
	switch f {
	case FormatJSON, "":
		b, err := MarshalJSON(v)
		if err != nil {
			return "", newErr(ErrInvalidPayload, "%v", err)
		}
		return string(b), nil
	case FormatRows:
		return rows.Encode(v, rows.Options{Delimiter: opts.Delimiter}), nil
	case FormatColumns:
		return columns.Encode(v, columns.Options{Delimiter: opts.Delimiter, UseASCII: opts.ASCII}), nil
	case FormatStruct:
		return structfmt.Encode(v), nil
	default:
		return "", newErr(ErrInvalidPayload, "unknown format %q", f)
	}
}
