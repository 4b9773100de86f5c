package logging

import "fmt"

// ChannelSink renders events with the terminal styles and forwards them on a
// channel. Sends are non-blocking; if the consumer lags, lines are dropped
// from the channel but still reach the other sinks in the fanout.
type ChannelSink struct {
	C chan string
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan string, buffer)}
}

func (c *ChannelSink) send(line string) {
	select {
	case c.C <- line:
	default:
	}
}

func (c *ChannelSink) Infof(format string, args ...any) {
	c.send(fmt.Sprintf(format, args...))
}

func (c *ChannelSink) Successf(format string, args ...any) {
	c.send(successStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *ChannelSink) Warnf(format string, args ...any) {
	c.send(warnStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *ChannelSink) Errorf(format string, args ...any) {
	c.send(errorStyle.Render(fmt.Sprintf(format, args...)))
}
