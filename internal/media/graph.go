package media

import (
	"fmt"
	"strings"

	"videogen/internal/domain"
)

// ConcatGraph builds the filter graph that concatenates ordered clips into one
// continuous output. The clip order is playback order; it is a list, not a
// set, so empty input and duplicate entries are rejected before ffmpeg runs.
type ConcatGraph struct {
	width     int
	height    int
	normalize bool
	clips     []string
}

// NewConcatGraph returns a builder targeting the given resolution. When
// normalize is set, every clip is scaled and padded to that resolution before
// concatenation.
func NewConcatGraph(width, height int, normalize bool) *ConcatGraph {
	return &ConcatGraph{width: width, height: height, normalize: normalize}
}

// Add appends a clip in playback order.
func (g *ConcatGraph) Add(clipPath string) {
	g.clips = append(g.clips, clipPath)
}

// Validate checks the clip list invariants.
func (g *ConcatGraph) Validate() error {
	if len(g.clips) == 0 {
		return fmt.Errorf("%w: no clips", domain.ErrInvalidClipList)
	}
	seen := make(map[string]struct{}, len(g.clips))
	for _, clip := range g.clips {
		if clip == "" {
			return fmt.Errorf("%w: empty clip path", domain.ErrInvalidClipList)
		}
		if _, dup := seen[clip]; dup {
			return fmt.Errorf("%w: duplicate clip %s", domain.ErrInvalidClipList, clip)
		}
		seen[clip] = struct{}{}
	}
	return nil
}

// InputArgs returns the -i arguments for every clip, in order.
func (g *ConcatGraph) InputArgs() []string {
	args := make([]string, 0, 2*len(g.clips))
	for _, clip := range g.clips {
		args = append(args, "-i", clip)
	}
	return args
}

// Filter returns the filter_complex description. Exactly one video and one
// audio stream per input feed the concat node, so a stream-count mismatch is
// impossible by construction.
func (g *ConcatGraph) Filter() (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	var pairs []string
	for i := range g.clips {
		videoLabel := fmt.Sprintf("%d:v", i)
		if g.normalize {
			normalized := fmt.Sprintf("v%d", i)
			fmt.Fprintf(&b,
				"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[%s];",
				i, g.width, g.height, g.width, g.height, normalized)
			videoLabel = normalized
		}
		pairs = append(pairs, fmt.Sprintf("[%s][%d:a]", videoLabel, i))
	}

	fmt.Fprintf(&b, "%sconcat=n=%d:v=1:a=1[vout][aout]", strings.Join(pairs, ""), len(g.clips))
	return b.String(), nil
}

// Len reports the number of clips added so far.
func (g *ConcatGraph) Len() int {
	return len(g.clips)
}
