package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// GLB container constants.
// https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"
)

var (
	errGLBTooSmall       = errors.New("GLB file too small")
	errInvalidGLBMagic   = errors.New("invalid GLB magic number")
	errInvalidGLBVersion = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk  = errors.New("GLB file missing JSON chunk")
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	Length uint32
	Type   uint32
}

// isGLB reports whether data starts with the GLB magic.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// splitGLB returns the JSON chunk and the optional BIN chunk of a GLB container. Chunks of other
// types are skipped; when a type repeats the last one wins.
func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < 12 {
		return nil, nil, errGLBTooSmall
	}

	r := bytes.NewReader(data)
	var h glbHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, fmt.Errorf("reading GLB header: %w", err)
	}
	switch {
	case h.Magic != glbMagic:
		return nil, nil, errInvalidGLBMagic
	case h.Version != glbVersion:
		return nil, nil, errInvalidGLBVersion
	}

	for r.Len() > 0 {
		var ch glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			return nil, nil, fmt.Errorf("reading GLB chunk header: %w", err)
		}
		if int64(ch.Length) > int64(r.Len()) {
			return nil, nil, fmt.Errorf("GLB chunk of %d bytes with %d left: %w", ch.Length, r.Len(), errBufferSizeMismatch)
		}

		chunk := make([]byte, ch.Length)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, nil, fmt.Errorf("reading GLB chunk: %w", err)
		}
		switch ch.Type {
		case glbChunkJSON:
			jsonChunk = chunk
		case glbChunkBIN:
			binChunk = chunk
		}
	}

	if jsonChunk == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonChunk, binChunk, nil
}
