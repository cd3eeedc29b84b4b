package compare

import "bytes"

// sniffSize is how much of a file is inspected to tell text from binary
const sniffSize = 8000

// IsBinary reports whether data looks like binary content.
// A NUL byte within the first sniffSize bytes marks the file as binary.
func IsBinary(data []byte) bool {
	if len(data) > sniffSize {
		data = data[:sniffSize]
	}
	return bytes.IndexByte(data, 0) >= 0
}
