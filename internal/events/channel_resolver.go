package events

import (
	"strings"
)

const (
	channelPrefix = "channel:poll:"
	// ChannelPattern matches every poll change channel.
	ChannelPattern = channelPrefix + "*"
)

// ChannelFor returns the pub/sub channel a change type is published on.
func ChannelFor(changeType string) string {
	return channelPrefix + changeType
}

// TypeFromChannel reverses ChannelFor; ok is false for foreign channels.
func TypeFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, channelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, channelPrefix), true
}
