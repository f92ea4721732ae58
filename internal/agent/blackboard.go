package agent

// Blackboard is the open key-value store behavior-tree authors use to
// share state on an agent. Keys are application-defined.
type Blackboard map[string]any

func (b Blackboard) Set(key string, value any) {
	b[key] = value
}

func (b Blackboard) Get(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

func (b Blackboard) Delete(key string) {
	delete(b, key)
}

// GetFloat returns the value under key when it is a float64.
func (b Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := b[key].(float64)
	return v, ok
}

// GetString returns the value under key when it is a string.
func (b Blackboard) GetString(key string) (string, bool) {
	v, ok := b[key].(string)
	return v, ok
}
