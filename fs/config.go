// config.go - Typisierte Key/Value-Konfiguration fuer Modelle
//
// Dieses Modul enthaelt:
// - Config: Interface mit typisierten Accessoren und Defaults
// - KV: Map-basierte Implementierung des Config-Interface
package fs

// Config exposes typed model metadata with optional defaults. Model
// constructors read everything they need through this interface; where a
// key is absent the provided default (or the zero value) is returned.
type Config interface {
	Architecture() string

	String(key string, defaultValue ...string) string
	Uint(key string, defaultValue ...uint32) uint32
	Float(key string, defaultValue ...float32) float32
	Bool(key string, defaultValue ...bool) bool

	Uints(key string, defaultValue ...[]uint32) []uint32
	Floats(key string, defaultValue ...[]float32) []float32
}

// KV implementiert Config ueber eine generische Map (z.B. aus JSON geladen)
type KV map[string]any

// Architecture gibt die Modell-Architektur zurueck (Key "general.architecture")
func (kv KV) Architecture() string {
	return kv.String("general.architecture", "unknown")
}

func keyValue[T any](kv KV, key string, defaultValue T) T {
	if v, ok := kv[key].(T); ok {
		return v
	}
	return defaultValue
}

func (kv KV) String(key string, defaultValue ...string) string {
	return keyValue(kv, key, append(defaultValue, "")[0])
}

// Uint liest einen Integer-Wert; JSON-Zahlen kommen als float64 an
func (kv KV) Uint(key string, defaultValue ...uint32) uint32 {
	switch v := kv[key].(type) {
	case uint32:
		return v
	case int:
		return uint32(v)
	case float64:
		return uint32(v)
	}
	return append(defaultValue, 0)[0]
}

func (kv KV) Float(key string, defaultValue ...float32) float32 {
	switch v := kv[key].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	}
	return append(defaultValue, 0)[0]
}

func (kv KV) Bool(key string, defaultValue ...bool) bool {
	return keyValue(kv, key, append(defaultValue, false)[0])
}

func (kv KV) Uints(key string, defaultValue ...[]uint32) []uint32 {
	switch v := kv[key].(type) {
	case []uint32:
		return v
	case []any:
		s := make([]uint32, len(v))
		for i := range v {
			switch n := v[i].(type) {
			case float64:
				s[i] = uint32(n)
			case int:
				s[i] = uint32(n)
			}
		}
		return s
	}
	return append(defaultValue, []uint32(nil))[0]
}

func (kv KV) Floats(key string, defaultValue ...[]float32) []float32 {
	switch v := kv[key].(type) {
	case []float32:
		return v
	case []any:
		s := make([]float32, len(v))
		for i := range v {
			switch n := v[i].(type) {
			case float64:
				s[i] = float32(n)
			case int:
				s[i] = float32(n)
			}
		}
		return s
	}
	return append(defaultValue, []float32(nil))[0]
}
