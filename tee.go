// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

// TeeFiller wraps fill so that every byte it delivers is also handed to
// side via a direct flush call, mirroring io.TeeReader's shape for pbuf's
// Filler callback. If the side flush fails, its error is returned instead
// of fill's result; nothing read from fill is lost in that case, it simply
// never reaches the caller since the combined fill reports the failure.
func TeeFiller(fill Filler, side Flusher) Filler {
	return func(buf *Buffer, startIndex, endIndex int) (int, error) {
		n, err := fill(buf, startIndex, endIndex)
		if n > 0 {
			if serr := side(buf, startIndex, startIndex+n); serr != nil {
				return n, serr
			}
		}
		return n, err
	}
}

// TeeFlusher wraps flush so that every Buffer it drains is also handed to
// side first. If the side flush fails, that error is returned and primary
// is never called for this call.
func TeeFlusher(primary, side Flusher) Flusher {
	return func(buf *Buffer, startIndex, endIndex int) error {
		if err := side(buf, startIndex, endIndex); err != nil {
			return err
		}
		return primary(buf, startIndex, endIndex)
	}
}
