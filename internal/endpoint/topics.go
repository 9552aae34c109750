package endpoint

import (
	"strings"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/transport"
)

// resolveSubscriptions builds the topic subscription set from configuration.
//
// subscribe.topics is treated as a comma-separated list: each entry is
// trimmed of whitespace and empty entries are dropped. When the list yields
// nothing, the singular subscribe.topic (trimmed) is the fallback. With
// neither present the result is empty and a warning is logged; that is a
// valid publish-only configuration, not an error.
func resolveSubscriptions(cfg *config.Config, logger Logger) []transport.Subscription {
	qos := byte(cfg.Subscribe.QoS)

	if list := cfg.Subscribe.Topics; list != "" {
		names := strings.Split(list, ",")
		subs := make([]transport.Subscription, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			subs = append(subs, transport.Subscription{Topic: name, QoS: qos})
		}
		if len(subs) > 0 {
			return subs
		}
	}

	if name := strings.TrimSpace(cfg.Subscribe.Topic); name != "" {
		return []transport.Subscription{{Topic: name, QoS: qos}}
	}

	logger.Warn("no subscribe topic configured, operating publish-only")
	return nil
}
