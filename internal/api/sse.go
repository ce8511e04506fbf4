package api

import "bytes"

const dataPrefix = "data: "

// FrameDecoder splits an SSE byte stream into frame payloads. Chunks can be
// fed in any segmentation; a partial trailing line is carried over until its
// terminator arrives, so the output never depends on where the transport
// happened to split the stream.
type FrameDecoder struct {
	carry []byte
}

// Feed appends a chunk and returns the payloads of all complete `data: `
// lines it unlocked, in order. Blank lines and lines without the data prefix
// are dropped. An incomplete final line is held for the next Feed.
func (d *FrameDecoder) Feed(chunk []byte) [][]byte {
	d.carry = append(d.carry, chunk...)

	var frames [][]byte
	for {
		i := bytes.IndexByte(d.carry, '\n')
		if i < 0 {
			return frames
		}
		line := d.carry[:i]
		d.carry = d.carry[i+1:]

		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, []byte(dataPrefix)) {
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if len(payload) == 0 {
			continue
		}
		frames = append(frames, append([]byte(nil), payload...))
	}
}

// Pending reports whether an unterminated line is still buffered. A stream
// that ends with data pending was cut off mid-frame; the fragment is never
// emitted.
func (d *FrameDecoder) Pending() bool {
	return len(d.carry) > 0
}
