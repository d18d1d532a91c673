package mocks

import (
	"bytes"
	"fmt"
)

// Y4M builds a 4:2:0 YUV4MPEG2 stream at 30 fps with one frame per luma value.
// Every frame is a flat gray picture with neutral chroma.
func Y4M(width, height int, lumas []uint8) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "YUV4MPEG2 W%d H%d F30:1 Ip A1:1 C420jpeg\n", width, height)

	cw, ch := (width+1)/2, (height+1)/2
	for _, luma := range lumas {
		buf.WriteString("FRAME\n")
		buf.Write(bytes.Repeat([]byte{luma}, width*height))
		buf.Write(bytes.Repeat([]byte{128}, 2*cw*ch))
	}
	return buf.Bytes()
}
