package discovery

import "github.com/sirupsen/logrus"

// TextSink receives text messages accepted by the listener. The listener
// calls DeliverText inline from its receive loop, so implementations must
// return quickly and never block.
type TextSink interface {
	DeliverText(fromID, text string)
}

// LogSink is the fallback sink used when the host wires nothing else in
type LogSink struct{}

// DeliverText logs the received text
func (LogSink) DeliverText(fromID, text string) {
	logrus.Infof("discovery: text from %s: %s", fromID, text)
}
