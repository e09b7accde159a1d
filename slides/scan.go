package slides

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"ppt-video-pipeline/types"
)

var slideFilePattern = regexp.MustCompile(`^slide-(\d+)\.png$`)

// ScanImages finds slide-NN.png files in a directory and returns them as
// ordered slides. This is the one place indices are derived from filenames;
// everything downstream carries them explicitly.
func ScanImages(dir string) ([]types.Slide, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "slide-*.png"))
	if err != nil {
		return nil, err
	}

	var slides []types.Slide
	for _, path := range matches {
		m := slideFilePattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil || index < 1 {
			continue
		}
		slides = append(slides, types.Slide{
			Index:     index,
			ImagePath: path,
			PageType:  types.PageContent,
		})
	}

	if len(slides) == 0 {
		return nil, fmt.Errorf("no slide images found in %s (expected slide-*.png)", dir)
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].Index < slides[j].Index })

	for i, s := range slides {
		if s.Index != i+1 {
			return nil, fmt.Errorf("slide indices not contiguous: expected %d, found slide-%02d.png", i+1, s.Index)
		}
	}

	slides[0].PageType = types.PageCover
	slides[len(slides)-1].PageType = types.PageData
	return slides, nil
}
