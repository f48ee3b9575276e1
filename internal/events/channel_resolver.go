package events

import (
	"fmt"
	"sort"
)

const channelPrefix = "changes"

// ChannelResolver determines which channels a change is published on and
// which single channel a subscription listens to. Filtering happens by
// channel name, so a subscriber only ever receives rows it asked for.
type ChannelResolver interface {
	PublishChannels(change Change) []string
	SubscribeChannel(table string, eventType EventType, filter Filter) string
}

// ColumnChannelResolver routes every change to one unfiltered channel plus
// one channel per key column.
type ColumnChannelResolver struct{}

func NewColumnChannelResolver() *ColumnChannelResolver {
	return &ColumnChannelResolver{}
}

func (r *ColumnChannelResolver) PublishChannels(change Change) []string {
	channels := []string{r.SubscribeChannel(change.Table, change.Type, Filter{})}

	columns := make([]string, 0, len(change.Keys))
	for column := range change.Keys {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		channels = append(channels, r.SubscribeChannel(change.Table, change.Type, Filter{Column: column, Value: change.Keys[column]}))
	}
	return channels
}

func (r *ColumnChannelResolver) SubscribeChannel(table string, eventType EventType, filter Filter) string {
	if filter.Column == "" {
		return fmt.Sprintf("%s:%s:%s:*", channelPrefix, table, eventType)
	}
	return fmt.Sprintf("%s:%s:%s:%s=%s", channelPrefix, table, eventType, filter.Column, filter.Value)
}
