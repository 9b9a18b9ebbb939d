package ir

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// magic is the 8-byte identifier stamped at the start of every serialized
// bytecode file, mirroring the teacher's ZKBINARY constant
// (pkg/binfile/binfile.go): readers can sniff the file type without a full
// gob decode.
var magic = [8]byte{'z', 'i', 'n', 'c', 'b', 'c', '0', '1'}

const (
	majorVersion uint16 = 1
	minorVersion uint16 = 0
)

// Header is the fixed-layout, hand-encoded prefix of a bytecode file,
// modeled directly on the teacher's binfile.Header: a magic identifier and
// two version fields, written with encoding/binary rather than gob so the
// file can be identified without decoding the (possibly incompatible) body
// that follows.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
}

// MarshalBinary renders the header in the fixed 12-byte wire layout.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(h.Identifier[:])

	var majorBytes, minorBytes [2]byte
	binary.BigEndian.PutUint16(majorBytes[:], h.MajorVersion)
	binary.BigEndian.PutUint16(minorBytes[:], h.MinorVersion)
	buf.Write(majorBytes[:])
	buf.Write(minorBytes[:])

	return buf.Bytes(), nil
}

// UnmarshalBinary reads the header back from its fixed 12-byte layout.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("ir: truncated bytecode header (%d bytes)", len(data))
	}

	copy(h.Identifier[:], data[:8])
	h.MajorVersion = binary.BigEndian.Uint16(data[8:10])
	h.MinorVersion = binary.BigEndian.Uint16(data[10:12])

	return nil
}

// Encode serializes a compiled Unit to the bytecode wire format of
// spec.md §6.2: a fixed Header followed by a gob-encoded Unit body.
func Encode(unit Unit) ([]byte, error) {
	var body bytes.Buffer

	if err := gob.NewEncoder(&body).Encode(unit); err != nil {
		return nil, fmt.Errorf("ir: encoding bytecode body: %w", err)
	}

	header := Header{Identifier: magic, MajorVersion: majorVersion, MinorVersion: minorVersion}

	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return append(headerBytes, body.Bytes()...), nil
}

// Decode parses a bytecode blob previously produced by Encode, rejecting
// anything whose magic identifier doesn't match or whose major version is
// incompatible (minor versions are forward-readable, per the teacher's own
// BINFILE_MINOR_VERSION compatibility rule).
func Decode(data []byte) (Unit, error) {
	var header Header
	if err := header.UnmarshalBinary(data); err != nil {
		return Unit{}, err
	}

	if header.Identifier != magic {
		return Unit{}, fmt.Errorf("ir: not a zinc bytecode file (bad magic %q)", header.Identifier)
	}

	if header.MajorVersion != majorVersion {
		return Unit{}, fmt.Errorf("ir: incompatible bytecode version %d.%d (expected %d.x)",
			header.MajorVersion, header.MinorVersion, majorVersion)
	}

	var unit Unit

	if err := gob.NewDecoder(bytes.NewReader(data[12:])).Decode(&unit); err != nil {
		return Unit{}, fmt.Errorf("ir: decoding bytecode body: %w", err)
	}

	return unit, nil
}
