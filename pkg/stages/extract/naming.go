package extract

import (
	"fmt"
	"strconv"
)

// FrameName returns the file name for the frame at index, e.g. "frame_0007.png".
// The index is zero-padded to at least digits characters and never truncated.
func FrameName(prefix string, index, digits int, ext string) string {
	return fmt.Sprintf("%s%0*d.%s", prefix, digits, index, ext)
}

// PadWidth returns the index width for a run. It is minDigits, widened so
// that the last index fits when the frame count is known in advance.
func PadWidth(minDigits, expectedFrames int) int {
	width := max(minDigits, 1)
	if expectedFrames > 1 {
		width = max(width, len(strconv.Itoa(expectedFrames-1)))
	}
	return width
}
