// Package message renders event announcements as Slack Block Kit blocks.
//
// Rendering is a pure function of the event session and channel config, so
// the same state always produces the same blocks. The event ID travels inside
// the announcement itself, embedded in the block_id of the trailing divider,
// and can be recovered from an interaction payload with EventIDFromBlocks.
package message
