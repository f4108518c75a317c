// Package collector pkg/collector/convert.go
package collector

import (
	"context"
	"log"
	"time"

	"github.com/ringview/ringview/pkg/metrics"
)

const microsPerMilli = 1000.0

// readNumber reads one numeric attribute with its own timeout. Failure is
// absence: it is logged and never aborts the rest of the extraction.
func readNumber(ctx context.Context, src AttributeSource, ref attrRef, timeout time.Duration) metrics.Float {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := src.ReadAttribute(readCtx, ref.object, ref.attr)
	if err != nil {
		log.Printf("Attribute read failed for %s %s: %v", ref.object, ref.attr, err)
		return metrics.Absent()
	}

	num, ok := value.Number()
	if !ok {
		log.Printf("Attribute %s %s: %v", ref.object, ref.attr, ErrNotANumber)
		return metrics.Absent()
	}

	return metrics.FloatOf(num)
}

// readComposite reads a composite attribute and extracts the named numeric
// sub-fields. Missing object or missing field both surface as absence.
func readComposite(
	ctx context.Context, src AttributeSource, ref attrRef, timeout time.Duration, fields ...string,
) map[string]metrics.Float {
	out := make(map[string]metrics.Float, len(fields))
	for _, name := range fields {
		out[name] = metrics.Absent()
	}

	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := src.ReadAttribute(readCtx, ref.object, ref.attr)
	if err != nil {
		log.Printf("Attribute read failed for %s %s: %v", ref.object, ref.attr, err)
		return out
	}

	for _, name := range fields {
		f, ok := value.Field(name)
		if !ok {
			log.Printf("Attribute %s %s: %v (%s)", ref.object, ref.attr, ErrMissingField, name)
			continue
		}

		out[name] = metrics.FloatOf(f)
	}

	return out
}

// microsToMillis converts a remote latency value (microseconds) to
// milliseconds, preserving absence.
func microsToMillis(f metrics.Float) metrics.Float {
	return f.Map(func(v float64) float64 { return v / microsPerMilli })
}

// heapPercent derives used/max*100 rounded; absent if either side is
// absent or max is zero.
func heapPercent(used, max metrics.Float) metrics.Float {
	u, ok := used.Get()
	if !ok {
		return metrics.Absent()
	}

	m, ok := max.Get()
	if !ok || m <= 0 {
		return metrics.Absent()
	}

	return metrics.FloatOf(u / m * 100).Round()
}
