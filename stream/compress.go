/*
 * compress.go, part of sire-go.
 *
 *
 * Copyright 2026 The sire-go Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package stream

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Format is the compression applied to a restart stream.
type Format int

const (
	Zstd Format = iota
	Gzip
	Flate
	None
)

// FormatFromName picks the compression from a file name, like the stf
// trajectory writer does: ".gz" is gzip, ".fl" raw deflate, ".bin"
// uncompressed, and anything else zstd.
func FormatFromName(name string) Format {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".gz"):
		return Gzip
	case strings.HasSuffix(name, ".fl"):
		return Flate
	case strings.HasSuffix(name, ".bin"):
		return None
	default:
		return Zstd
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewCompressedWriter returns a writer that compresses into w. Closing it
// flushes the compressor but doesn't close w.
func NewCompressedWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case Flate:
		return flate.NewWriter(w, flate.BestCompression)
	case None:
		return nopWriteCloser{w}, nil
	default:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

// NewCompressedReader returns a reader that decompresses r.
func NewCompressedReader(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case Gzip:
		return gzip.NewReader(r)
	case Flate:
		return flate.NewReader(r), nil
	case None:
		return io.NopCloser(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	}
}
