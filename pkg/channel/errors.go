package channel

import "errors"

// Protocol misuse is fatal to the calling operation: these are returned
// immediately and never retried internally.
var (
	// ErrUnknownProcess is returned when the calling process has not joined
	// the channel (or its membership entries have been removed).
	ErrUnknownProcess = errors.New("channel: calling process has not joined")
	// ErrAlreadyJoined is returned when the calling process attempts a
	// second join on the same channel.
	ErrAlreadyJoined = errors.New("channel: process already joined")
	// ErrIDInUse is returned when another process already joined with the
	// requested channel-level id.
	ErrIDInUse = errors.New("channel: id already in use")
	// ErrInvalidID is returned for ids outside the encodable range.
	ErrInvalidID = errors.New("channel: id out of range")
	// ErrDestinationNotMember is returned by sends whose destination is not
	// a current member.
	ErrDestinationNotMember = errors.New("channel: destination is not a member")
	// ErrUnknownSender is returned by receives naming a sender that is not
	// a current member.
	ErrUnknownSender = errors.New("channel: sender is not a member")
)

// Non-error outcomes, distinguishable with errors.Is.
var (
	// ErrTimeout reports that a bounded receive saw no message within its
	// window. It is a sentinel, not a failure.
	ErrTimeout = errors.New("channel: receive timed out")
	// ErrNoMessage reports that a non-blocking receive found no queued
	// message. It is a sentinel, not a failure.
	ErrNoMessage = errors.New("channel: no message available")
)
