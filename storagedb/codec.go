// Copyright 2019 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

package storagedb

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/ground-x/chainkit/types"
)

// ErrShortHeader is returned by DecodeHeader when the input is too small to
// hold a fixed-width header record.
var ErrShortHeader = errors.New("storagedb: header bytes too short")

const headerEncodedLen = 8 + 8 + 32 + 8 + 8 + 4 + 4

// EncodeHeader packs a Header into the fixed-width record BlockStore
// persists. The teacher encodes block headers with its own rlp codec
// (part of the go-gxplatform module this repo does not retain as a
// dependency); a manual field-by-field encoding/binary layout is the
// direct replacement, following the same fixed-order packing style
// heightKey already uses in blockstore.go.
func EncodeHeader(h types.Header) []byte {
	b := make([]byte, headerEncodedLen)
	off := 0
	binary.BigEndian.PutUint64(b[off:], h.Height)
	off += 8
	binary.BigEndian.PutUint64(b[off:], uint64(h.Time.UnixNano()))
	off += 8
	copy(b[off:off+32], h.PrevRoot[:])
	off += 32
	binary.BigEndian.PutUint64(b[off:], h.DaHeightFrom)
	off += 8
	binary.BigEndian.PutUint64(b[off:], h.DaHeight)
	off += 8
	binary.BigEndian.PutUint32(b[off:], h.ConsensusParametersVersion)
	off += 4
	binary.BigEndian.PutUint32(b[off:], h.StateTransitionBytecodeVersion)
	return b
}

// DecodeHeader is the inverse of EncodeHeader.
func DecodeHeader(b []byte) (types.Header, error) {
	var h types.Header
	if len(b) < headerEncodedLen {
		return h, ErrShortHeader
	}
	off := 0
	h.Height = binary.BigEndian.Uint64(b[off:])
	off += 8
	h.Time = time.Unix(0, int64(binary.BigEndian.Uint64(b[off:]))).UTC()
	off += 8
	copy(h.PrevRoot[:], b[off:off+32])
	off += 32
	h.DaHeightFrom = binary.BigEndian.Uint64(b[off:])
	off += 8
	h.DaHeight = binary.BigEndian.Uint64(b[off:])
	off += 8
	h.ConsensusParametersVersion = binary.BigEndian.Uint32(b[off:])
	off += 4
	h.StateTransitionBytecodeVersion = binary.BigEndian.Uint32(b[off:])
	return h, nil
}

// HashHeader derives the root a committed block is indexed under. Actual
// state-root computation belongs to the excluded execution engine
// (Non-goals); this hash of the header's own encoding is the stand-in root
// this module computes and persists so BlockStore has something to key
// LatestBlockRoot on without depending on executor internals.
func HashHeader(h types.Header) [32]byte {
	return sha256.Sum256(EncodeHeader(h))
}
