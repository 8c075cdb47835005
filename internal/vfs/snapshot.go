package vfs

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// EncodeSnapshot serializes the whole tree into one zstd-compressed blob.
func EncodeSnapshot(f *Folder) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("%w: couldn't serialize folder: %w", ErrSnapshot, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	defer enc.Close()
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

// DecodeSnapshot restores a tree written by EncodeSnapshot.
func DecodeSnapshot(blob []byte) (*Folder, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	var f Folder
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: couldn't deserialize folder: %w", ErrSnapshot, err)
	}
	f.normalize()
	return &f, nil
}

// normalize restores the empty maps and slices gob leaves out.
func (f *Folder) normalize() {
	if f.Folders == nil {
		f.Folders = make(map[string]*Folder)
	}
	if f.Files == nil {
		f.Files = make(map[string][]byte)
	}
	for name, content := range f.Files {
		if content == nil {
			f.Files[name] = []byte{}
		}
	}
	for _, sub := range f.Folders {
		sub.normalize()
	}
}
