package channel

import (
	"fmt"
	"strconv"
)

// Store keyspace for one channel.
//
// Layout (flat strings; ids are fixed-width zero-padded decimal so keys can
// be sliced back apart by position):
// - channels                     global set of known channel ids
// - C{chan}MID                   set of channel-level member ids
// - C{chan}OID                   map of OS identity -> channel-level id
// - C{chan}WOS{id}               per-receiver wakeup queue
// - C{chan}{sender}{receiver}    per-pair message queue

const (
	// numDigits is the fixed width of every encoded id.
	numDigits = 4
	// maxProcID doubles as the largest valid id and the sentinel member
	// seeded at channel creation so member collections are never empty.
	maxProcID = 9999
	// maxChanID bounds channel ids the same way.
	maxChanID = 9999
)

// registryKey is the global set of known channel ids.
const registryKey = "channels"

const (
	membersSuffix   = "MID"
	osMembersSuffix = "OID"
	wakeupSuffix    = "WOS"
)

// formatID renders an id as fixed-width zero-padded decimal.
func formatID(id int) string {
	return fmt.Sprintf("%0*d", numDigits, id)
}

func parseID(s string) (int, error) {
	return strconv.Atoi(s)
}

// channelPrefix namespaces every key of one channel.
func channelPrefix(channelID int) string {
	return "C" + formatID(channelID)
}

// pairKey encodes an ordered (sender, receiver) pair into one queue key.
// It is a pure function of its inputs; no registry lookup involved.
func pairKey(prefix string, sender, receiver int) string {
	return prefix + formatID(sender) + formatID(receiver)
}

// decodePairKey is the exact inverse of pairKey: it slices the fixed-width
// sender and receiver fields back out of the key.
func decodePairKey(key string) (sender, receiver int, err error) {
	want := len("C") + 3*numDigits
	if len(key) != want {
		return 0, 0, fmt.Errorf("channel: malformed pair key %q", key)
	}
	sender, err = parseID(key[1+numDigits : 1+2*numDigits])
	if err != nil {
		return 0, 0, fmt.Errorf("channel: malformed pair key %q", key)
	}
	receiver, err = parseID(key[1+2*numDigits:])
	if err != nil {
		return 0, 0, fmt.Errorf("channel: malformed pair key %q", key)
	}
	return sender, receiver, nil
}

// wakeupKey names the signal-only queue of one receiver. The suffix keeps it
// disjoint from every pair key.
func wakeupKey(prefix string, id int) string {
	return prefix + wakeupSuffix + formatID(id)
}
