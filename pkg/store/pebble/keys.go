package pebblestore

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - set/{name}/{member}
// - map/{name}/{field}
// - q/{name}/m            (queue metadata: lastSeq be8)
// - q/{name}/e/{seq_be8}  (queue entries in FIFO order)

var (
	sep         = byte('/')
	setPrefix   = []byte("set/")
	mapPrefix   = []byte("map/")
	queuePrefix = []byte("q/")
	metaSuffix  = []byte("/m")
	entrySeg    = []byte("/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func keySetMember(set, member string) []byte {
	k := make([]byte, 0, len(setPrefix)+len(set)+1+len(member))
	k = append(k, setPrefix...)
	k = append(k, set...)
	k = append(k, sep)
	k = append(k, member...)
	return k
}

func keySetPrefix(set string) []byte {
	k := make([]byte, 0, len(setPrefix)+len(set)+1)
	k = append(k, setPrefix...)
	k = append(k, set...)
	k = append(k, sep)
	return k
}

func keyMapField(m, field string) []byte {
	k := make([]byte, 0, len(mapPrefix)+len(m)+1+len(field))
	k = append(k, mapPrefix...)
	k = append(k, m...)
	k = append(k, sep)
	k = append(k, field...)
	return k
}

func keyMapPrefix(m string) []byte {
	k := make([]byte, 0, len(mapPrefix)+len(m)+1)
	k = append(k, mapPrefix...)
	k = append(k, m...)
	k = append(k, sep)
	return k
}

func keyQueueMeta(queue string) []byte {
	k := make([]byte, 0, len(queuePrefix)+len(queue)+2)
	k = append(k, queuePrefix...)
	k = append(k, queue...)
	k = append(k, metaSuffix...)
	return k
}

// keyQueueEntry builds the entry key with a big-endian sequence so iteration
// order is push order.
func keyQueueEntry(queue string, seq uint64) []byte {
	k := make([]byte, 0, len(queuePrefix)+len(queue)+len(entrySeg)+8)
	k = append(k, queuePrefix...)
	k = append(k, queue...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

func keyQueueEntryPrefix(queue string) []byte {
	k := make([]byte, 0, len(queuePrefix)+len(queue)+len(entrySeg))
	k = append(k, queuePrefix...)
	k = append(k, queue...)
	k = append(k, entrySeg...)
	return k
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(prefix []byte) []byte {
	return append(append([]byte{}, prefix...), 0xff)
}
