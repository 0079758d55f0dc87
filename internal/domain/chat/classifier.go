package chat

import "strings"

// Topic is a named keyword rule. A query belongs to the topic when any
// keyword appears in it and no exclusion does; exclusions always win.
type Topic struct {
	Name       string
	Keywords   []string
	Exclusions []string
}

// Classifier assigns a query to every topic whose rule matches. A query
// may belong to zero, one, or several topics.
type Classifier struct {
	topics []Topic
}

// NewClassifier constructs a classifier over the given rules.
func NewClassifier(topics []Topic) *Classifier {
	return &Classifier{topics: topics}
}

// Classify returns the names of all matching topics in rule order. The
// result is empty when no topic applies.
func (c *Classifier) Classify(query string) []string {
	normalized := strings.ToLower(query)
	var matched []string
	for _, topic := range c.topics {
		if topicMatches(normalized, topic) {
			matched = append(matched, topic.Name)
		}
	}
	return matched
}

func topicMatches(normalized string, topic Topic) bool {
	for _, exclusion := range topic.Exclusions {
		if exclusion != "" && strings.Contains(normalized, strings.ToLower(exclusion)) {
			return false
		}
	}
	for _, keyword := range topic.Keywords {
		if keyword != "" && strings.Contains(normalized, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
