package strip

import "ledstrip-go/bus"

const (
	VerbCommand = "command"
	VerbRead    = "read"
)

func topicConfig() bus.Topic  { return bus.T("config", "strip") }
func ctrlWildcard() bus.Topic { return bus.T("strip", "control", "+") }

// TopicState carries the retained types.StripState.
func TopicState() bus.Topic { return bus.T("strip", "state") }

// TopicDiag carries non-retained diagnostic strings.
func TopicDiag() bus.Topic { return bus.T("strip", "diag") }

// TopicControl is strip/control/<verb>.
func TopicControl(verb string) bus.Topic { return bus.T("strip", "control", verb) }
