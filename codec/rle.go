package codec

// rleCompress produces a sequence of (run_length, byte) pairs covering
// every byte of data exactly once. A run never exceeds 255 bytes, so a
// longer run of the same byte is split across multiple pairs.
func rleCompress(data []byte) []byte {
	var out = make([]byte, 0, len(data)/2+2)

	for i := 0; i < len(data); {
		var b = data[i]
		var run = 1
		for i+run < len(data) && data[i+run] == b && run < 255 {
			run++
		}
		out = append(out, byte(run), b)
		i += run
	}
	return out
}

// rleDecompress reconstructs the original bytes from (run_length, byte)
// pairs. originalSize only sizes the output buffer; the length check is
// left to the caller (Decompress).
func rleDecompress(body []byte, originalSize int) ([]byte, error) {
	var out = make([]byte, 0, originalSize)

	for i := 0; i+1 < len(body); i += 2 {
		var run, b = int(body[i]), body[i+1]
		for j := 0; j < run; j++ {
			out = append(out, b)
		}
	}
	return out, nil
}
