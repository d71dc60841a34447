package capability

// params is read by primitives that accept either an options object
// (make* functions) or rendered props (host components).
type params interface {
	float(key string, def float64) float64
	integer(key string, def int) int
	str(key, def string) string
	boolean(key string, def bool) bool
}

type propMap map[string]any

func (p propMap) float(key string, def float64) float64 { return propFloat(p, key, def) }

func (p propMap) integer(key string, def int) int { return int(propFloat(p, key, float64(def))) }

func (p propMap) str(key, def string) string { return propString(p, key, def) }

func (p propMap) boolean(key string, def bool) bool { return propBool(p, key, def) }
