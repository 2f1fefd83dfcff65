package script

import (
	"fmt"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

// ValidateAlignment checks the invariants alignment must establish: every
// word lies inside its segment within Epsilon, and segments form a
// contiguous, non-overlapping cover of the narration span.
func ValidateAlignment(segments []Segment) error {
	for i, seg := range segments {
		if seg.End < seg.Start-Epsilon {
			return services.Wrap(services.ErrValidation, "script", "validate alignment",
				fmt.Sprintf("segment %d ends before it starts", i), nil)
		}
		for j, w := range seg.Words {
			if w.Start < seg.Start-Epsilon || w.End > seg.End+Epsilon {
				return services.Wrap(services.ErrValidation, "script", "validate alignment",
					fmt.Sprintf("segment %d word %d (%q) outside segment span", i, j, w.Text), nil)
			}
		}
		if i > 0 {
			prev := segments[i-1]
			if seg.Start < prev.End-Epsilon {
				return services.Wrap(services.ErrValidation, "script", "validate alignment",
					fmt.Sprintf("segment %d overlaps segment %d", i, i-1), nil)
			}
		}
	}
	return nil
}
