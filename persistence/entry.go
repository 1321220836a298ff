// Package persistence is the stand-in for the persistent allocator
// primitives assumed as an external collaborator rather than something
// the core library implements. Every persistent
// engine is built against the Pool/Txn interfaces in pool.go; this
// package supplies exactly one concrete implementation, a CRC-framed
// append log adapted from the wal package, the same way
// storage_pure.go stands in for an assumed CGO/Rust-backed engine.
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// opKind tags a single framed record in the log.
type opKind uint32

const (
	opPut opKind = iota + 1
	opRemove
	opCommit
	opAbort
	opRoot
)

// entryHeaderSize is the fixed-size prefix of every framed record:
// txnID(8) + op(4) + keyLen(4) + valLen(4) + checksum(4).
const entryHeaderSize = 24

// entry is one framed record, the unit the log is replayed in. It plays
// the same role as wal.WALEntry, trimmed to what a key/value engine
// actually needs (no separate old-value slot; undo is handled by never
// applying a txn's records until its opCommit lands).
type entry struct {
	txnID    uint64
	op       opKind
	key      []byte
	val      []byte
	checksum uint32
}

func (e *entry) marshal() []byte {
	buf := make([]byte, entryHeaderSize+len(e.key)+len(e.val))
	binary.LittleEndian.PutUint64(buf[0:8], e.txnID)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(e.op))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(e.key)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(e.val)))
	copy(buf[entryHeaderSize:], e.key)
	copy(buf[entryHeaderSize+len(e.key):], e.val)

	sum := crc32.ChecksumIEEE(buf[:20])
	sum = crc32.Update(sum, crc32.IEEETable, buf[entryHeaderSize:])
	binary.LittleEndian.PutUint32(buf[20:24], sum)
	return buf
}

// unmarshalEntry reads one record from the head of data, returning the
// record and the number of bytes it occupied.
func unmarshalEntry(data []byte) (*entry, int, error) {
	if len(data) < entryHeaderSize {
		return nil, 0, errShortRead
	}
	keyLen := binary.LittleEndian.Uint32(data[12:16])
	valLen := binary.LittleEndian.Uint32(data[16:20])
	total := entryHeaderSize + int(keyLen) + int(valLen)
	if len(data) < total {
		return nil, 0, errShortRead
	}

	wantSum := binary.LittleEndian.Uint32(data[20:24])
	gotSum := crc32.ChecksumIEEE(data[:20])
	gotSum = crc32.Update(gotSum, crc32.IEEETable, data[entryHeaderSize:total])
	if wantSum != gotSum {
		return nil, 0, fmt.Errorf("persistence: checksum mismatch in log entry")
	}

	e := &entry{
		txnID: binary.LittleEndian.Uint64(data[0:8]),
		op:    opKind(binary.LittleEndian.Uint32(data[8:12])),
	}
	if keyLen > 0 {
		e.key = append([]byte(nil), data[entryHeaderSize:entryHeaderSize+keyLen]...)
	}
	if valLen > 0 {
		start := entryHeaderSize + int(keyLen)
		e.val = append([]byte(nil), data[start:start+int(valLen)]...)
	}
	return e, total, nil
}

var errShortRead = errors.New("persistence: truncated log entry")
